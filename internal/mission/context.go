// Package mission holds the state of the survey currently being recorded, shared with
// the logger and the recording workers.
package mission

import (
	"sync"
	"sync/atomic"

	"github.com/hydrocamel/sonarscan/pkg/core"
)

// Context holds the current mission and the step the engine last reported
type Context struct {
	mu      sync.RWMutex
	Mission *core.Mission
	step    atomic.Int64
}

// NewContext creates a new Context with default values
func NewContext() *Context {
	return &Context{
		Mission: &core.Mission{MissionName: "No mission loaded"},
	}
}

// GetMission returns the current mission
func (mc *Context) GetMission() *core.Mission {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.Mission
}

// SetMission sets the current mission and resets the step counter
func (mc *Context) SetMission(m *core.Mission) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.Mission = m
	mc.step.Store(0)
}

// SetStep records the latest engine step.
func (mc *Context) SetStep(step int) {
	mc.step.Store(int64(step))
}

// Step returns the latest engine step.
func (mc *Context) Step() int {
	return int(mc.step.Load())
}
