package masterdata

import "context"

// Plant is a physical solar installation containing one or more inverters.
// Plants are created and maintained by the provisioning pipeline; this
// service only reads them.
type Plant struct {
	ID          int64
	Name        string
	SourceAPI   string
	CapacityKWp float64
	// ProfileID is the explicitly assigned target profile. Empty for
	// plants registered before profiles existed; those are resolved by
	// the inference rules in the target package.
	ProfileID string
}

// Validate ensures basic invariants for a plant record.
func (p Plant) Validate() error {
	if p.ID <= 0 {
		return ErrInvalidPlantID
	}
	if p.Name == "" {
		return ErrEmptyPlantName
	}
	if p.CapacityKWp < 0 {
		return ErrNegativeCapacity
	}
	return nil
}

// Inverter is a generation device reporting interval readings for a plant.
type Inverter struct {
	ID      int64
	Name    string
	PlantID int64
}

// PlantRepository loads plant master data.
type PlantRepository interface {
	ListPlants(ctx context.Context) ([]Plant, error)
	ListPlantsByIDs(ctx context.Context, ids []int64) ([]Plant, error)
}

// InverterRepository loads inverter master data.
type InverterRepository interface {
	ListByPlants(ctx context.Context, plantIDs []int64) ([]Inverter, error)
}
