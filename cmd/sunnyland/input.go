package main

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/sunnyland/sim"
)

const stickDeadzone = 0.2

// keyboardInput reads keyboard and the first gamepad. Down crouches unless
// the player is on a ladder, where it climbs down instead.
type keyboardInput struct {
	climbing func() bool
}

func (k *keyboardInput) Poll() sim.Intent {
	left := ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft)
	right := ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight)
	up := ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp)
	down := ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown)
	jumpPressed := inpututil.IsKeyJustPressed(ebiten.KeySpace)

	moveX := 0.0
	if left {
		moveX -= 1
	}
	if right {
		moveX += 1
	}

	climbY := 0.0
	if up {
		climbY += 1
	}
	if down {
		climbY -= 1
	}

	if gamepads := ebiten.GamepadIDs(); len(gamepads) > 0 {
		id := gamepads[0]
		leftX := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		if math.Abs(leftX) > stickDeadzone {
			moveX = leftX
		}
		// Stick up is negative.
		leftY := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		if math.Abs(leftY) > stickDeadzone {
			climbY = -leftY
			down = down || leftY > 0.5
		}
		jumpPressed = jumpPressed || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightBottom)
	}

	climbing := k.climbing != nil && k.climbing()
	return sim.Intent{
		MoveX:  moveX,
		ClimbY: climbY,
		Jump:   jumpPressed,
		Crouch: down && !climbing,
	}
}
