package tag

const (
	LocomotionMode   Tag = "Status.LocomotionMode"
	RotationMode     Tag = "Status.RotationMode"
	Stance           Tag = "Status.Stance"
	Gait             Tag = "Status.Gait"
	LocomotionAction Tag = "Status.LocomotionAction"
)

const (
	LocomotionModeOnGround Tag = "Status.LocomotionMode.OnGround"
	LocomotionModeInAir    Tag = "Status.LocomotionMode.InAir"
	LocomotionModeInWater  Tag = "Status.LocomotionMode.InWater"

	RotationModeVelocityDirection Tag = "Status.RotationMode.VelocityDirection"
	RotationModeViewDirection     Tag = "Status.RotationMode.ViewDirection"
	RotationModeAiming            Tag = "Status.RotationMode.Aiming"

	StanceStanding  Tag = "Status.Stance.Standing"
	StanceCrouching Tag = "Status.Stance.Crouching"

	GaitWalking   Tag = "Status.Gait.Walking"
	GaitRunning   Tag = "Status.Gait.Running"
	GaitSprinting Tag = "Status.Gait.Sprinting"
)
