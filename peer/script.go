package peer

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/game"
	"github.com/oomph-ac/locomotion/tag"
)

// Script returns the input of the player for a tick.
type Script func(tick uint64) Input

// Wander walks in a slowly turning circle, looking ahead of the movement, and jumps every jumpEvery ticks.
// A jumpEvery of zero never jumps.
func Wander(acceleration, turnRate float32, tickRate, jumpEvery uint64) Script {
	return func(tick uint64) Input {
		yaw := game.NormalizeAxis(turnRate * float32(tick) / float32(tickRate))
		dir := game.AngleToDirectionXY(yaw)
		return Input{
			Acceleration: mgl32.Vec3{dir.X() * acceleration, dir.Y() * acceleration},
			Jump:         jumpEvery != 0 && tick != 0 && tick%jumpEvery == 0,
			View:         game.Rotator{Yaw: game.NormalizeAxis(yaw + 20*math32.Sin(float32(tick)/float32(tickRate)))},
		}
	}
}

// Gaits cycles through the gaits, changing every period ticks. It returns the gait desired at a tick and
// whether it changed on that tick.
func Gaits(period uint64) func(tick uint64) (tag.Tag, bool) {
	gaits := []tag.Tag{tag.GaitRunning, tag.GaitSprinting, tag.GaitWalking}
	return func(tick uint64) (tag.Tag, bool) {
		if period == 0 {
			return gaits[0], tick == 0
		}
		return gaits[(tick/period)%uint64(len(gaits))], tick%period == 0
	}
}
