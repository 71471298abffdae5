package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DoubleBuffering(t *testing.T) {
	bus := NewBus()
	var got []uint32
	Subscribe(bus, func(ev Destroyed) {
		got = append(got, ev.EntityID)
	})

	Emit(bus, Destroyed{EntityID: 7})

	// Emitted this tick, not visible yet.
	bus.DispatchAll()
	require.Empty(t, got)

	// Visible after the swap at next tick start.
	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Equal(t, []uint32{7}, got)

	// Delivered once, not again on the following tick.
	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Len(t, got, 1)
}

func TestBus_TypedRouting(t *testing.T) {
	bus := NewBus()
	var destroyed, attacked int
	Subscribe(bus, func(Destroyed) { destroyed++ })
	Subscribe(bus, func(Attacked) { attacked++ })

	Emit(bus, Attacked{EntityID: 1, AttackerID: 2})
	Emit(bus, Attacked{EntityID: 3, AttackerID: 2})
	bus.SwapBuffers()
	bus.DispatchAll()

	assert.Equal(t, 0, destroyed)
	assert.Equal(t, 2, attacked)
}

func TestBus_MultipleHandlers(t *testing.T) {
	bus := NewBus()
	var a, b int
	Subscribe(bus, func(Jumped) { a++ })
	Subscribe(bus, func(Jumped) { b++ })

	Emit(bus, Jumped{EntityID: 4})
	bus.SwapBuffers()
	bus.DispatchAll()

	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}
