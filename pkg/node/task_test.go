package node

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/sensornode/pkg/config"
)

func TestTaskSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    TaskSpec
		wantErr bool
	}{
		{name: "valid", spec: TaskSpec{Name: "a", Priority: 1, Core: 1, StackWords: 1024}},
		{name: "zero priority and core", spec: TaskSpec{Name: "a", StackWords: 1}},
		{name: "empty name", spec: TaskSpec{StackWords: 1}, wantErr: true},
		{name: "negative priority", spec: TaskSpec{Name: "a", Priority: -1, StackWords: 1}, wantErr: true},
		{name: "negative core", spec: TaskSpec{Name: "a", Core: -1, StackWords: 1}, wantErr: true},
		{name: "no stack", spec: TaskSpec{Name: "a"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSpecFrom(t *testing.T) {
	spec := SpecFrom(TaskReporter, config.Default().Tasks.Reporter)
	assert.Equal(t, TaskSpec{Name: TaskReporter, Priority: 1, Core: 1, StackWords: 8192}, spec)
}

func TestScheduler_Spawn(t *testing.T) {
	s := NewScheduler(nil)
	ctx, cancel := context.WithCancel(context.Background())

	var running atomic.Int32
	run := func(ctx context.Context) {
		running.Add(1)
		<-ctx.Done()
		running.Add(-1)
	}

	require.NoError(t, s.Spawn(ctx, TaskSpec{Name: "a", StackWords: 1}, run))
	require.NoError(t, s.Spawn(ctx, TaskSpec{Name: "b", StackWords: 1}, run))
	assert.Error(t, s.Spawn(ctx, TaskSpec{Name: "a", StackWords: 1}, run), "duplicate name")
	assert.Error(t, s.Spawn(ctx, TaskSpec{Name: "c"}, run), "invalid spec")

	assert.Eventually(t, func() bool { return running.Load() == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, []string{s.Tasks()[0].Name, s.Tasks()[1].Name})

	cancel()
	s.Wait()
	assert.Zero(t, running.Load())
}
