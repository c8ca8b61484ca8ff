package mission

import (
	"sync"
	"testing"

	"github.com/hydrocamel/sonarscan/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestContext_Defaults(t *testing.T) {
	ctx := NewContext()

	m := ctx.GetMission()
	assert.Equal(t, "No mission loaded", m.MissionName)
	assert.Equal(t, 0, ctx.Step())
}

func TestContext_SetMissionResetsStep(t *testing.T) {
	ctx := NewContext()
	ctx.SetStep(9)

	ctx.SetMission(&core.Mission{ID: 3, MissionName: "Harbour"})

	assert.Equal(t, uint(3), ctx.GetMission().ID)
	assert.Equal(t, "Harbour", ctx.GetMission().MissionName)
	assert.Equal(t, 0, ctx.Step())
}

func TestContext_ThreadSafe(t *testing.T) {
	ctx := NewContext()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			ctx.SetStep(i)
			ctx.SetMission(&core.Mission{MissionName: "m"})
		}(i)
		go func() {
			defer wg.Done()
			_ = ctx.GetMission().MissionName
			_ = ctx.Step()
		}()
	}
	wg.Wait()

	assert.Equal(t, "m", ctx.GetMission().MissionName)
}
