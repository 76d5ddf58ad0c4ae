package status

import "time"

// Status is the liveness classification of a device.
type Status string

const (
	StatusOnline  Status = "ONLINE"
	StatusOffline Status = "OFFLINE"
)

// OfflineAfter is how long a device may stay silent before it is reported
// offline.
const OfflineAfter = 30 * time.Minute

// Classify returns the device status given the current time and the last
// reading timestamp. The boundary is exclusive: a device silent for exactly
// OfflineAfter is still ONLINE.
func Classify(now, lastSeen time.Time) Status {
	if now.Sub(lastSeen) > OfflineAfter {
		return StatusOffline
	}
	return StatusOnline
}

// DeviceStatus is one row of the fleet status list.
type DeviceStatus struct {
	InverterName string    `json:"inverter_name"`
	PlantName    string    `json:"plant_name"`
	LastSeen     time.Time `json:"last_seen"`
	Status       Status    `json:"status"`
}
