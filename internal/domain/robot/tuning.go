package robot

const (
	MaxEnergy        = 1000
	BackpackCapacity = 20

	RechargePerTick = 25

	TeleportCost    = 30
	DestroyCost     = 3
	PutCost         = 3
	ScanCostPerTile = 1
)
