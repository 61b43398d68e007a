// Package regionmock provides a mock of region.Provider shaped the way
// mockgen would generate one from its interface, for deterministic
// extension-failure injection in allocator tests. It is hand-written
// rather than generated because no Go toolchain is available in this
// build pipeline to run mockgen.
package regionmock

import (
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/orizon-lang/firstfit/internal/region"
)

// MockProvider is a mock of region.Provider.
type MockProvider struct {
	ctrl     *gomock.Controller
	recorder *MockProviderMockRecorder
}

// MockProviderMockRecorder is the mock recorder for MockProvider.
type MockProviderMockRecorder struct {
	mock *MockProvider
}

// NewMockProvider creates a new mock instance.
func NewMockProvider(ctrl *gomock.Controller) *MockProvider {
	mock := &MockProvider{ctrl: ctrl}
	mock.recorder = &MockProviderMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockProvider) EXPECT() *MockProviderMockRecorder {
	return m.recorder
}

// Extend mocks base method.
func (m *MockProvider) Extend(incrementBytes uintptr) (uintptr, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Extend", incrementBytes)
	ret0, _ := ret[0].(uintptr)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Extend indicates an expected call of Extend.
func (mr *MockProviderMockRecorder) Extend(incrementBytes interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Extend",
		reflect.TypeOf((*MockProvider)(nil).Extend), incrementBytes)
}

// Low mocks base method.
func (m *MockProvider) Low() uintptr {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Low")
	ret0, _ := ret[0].(uintptr)
	return ret0
}

// Low indicates an expected call of Low.
func (mr *MockProviderMockRecorder) Low() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Low", reflect.TypeOf((*MockProvider)(nil).Low))
}

// High mocks base method.
func (m *MockProvider) High() uintptr {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "High")
	ret0, _ := ret[0].(uintptr)
	return ret0
}

// High indicates an expected call of High.
func (mr *MockProviderMockRecorder) High() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "High", reflect.TypeOf((*MockProvider)(nil).High))
}

// Size mocks base method.
func (m *MockProvider) Size() uintptr {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Size")
	ret0, _ := ret[0].(uintptr)
	return ret0
}

// Size indicates an expected call of Size.
func (mr *MockProviderMockRecorder) Size() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Size", reflect.TypeOf((*MockProvider)(nil).Size))
}

var _ region.Provider = (*MockProvider)(nil)
