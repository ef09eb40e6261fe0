package pipeline

import "testing"

func TestOptionsSetDefaults(t *testing.T) {
	var o Options
	o.SetDefaults()

	if o.PopulationSize != DefaultPopulationSize {
		t.Errorf("PopulationSize = %d, want %d", o.PopulationSize, DefaultPopulationSize)
	}
	if o.GenomeLength != DefaultGenomeLength {
		t.Errorf("GenomeLength = %d, want %d", o.GenomeLength, DefaultGenomeLength)
	}
	if o.Generations != DefaultGenerations {
		t.Errorf("Generations = %d, want %d", o.Generations, DefaultGenerations)
	}
	if o.SimplifyInterval != DefaultSimplifyInterval {
		t.Errorf("SimplifyInterval = %d, want %d", o.SimplifyInterval, DefaultSimplifyInterval)
	}
	if o.Seed != DefaultSeed {
		t.Errorf("Seed = %d, want %d", o.Seed, DefaultSeed)
	}
	if o.Logger == nil {
		t.Error("Logger should default to a non-nil logger")
	}
}

func TestOptionsSetDefaultsIdempotent(t *testing.T) {
	o := Options{PopulationSize: 7}
	o.SetDefaults()
	o.SetDefaults()

	if o.PopulationSize != 7 {
		t.Errorf("SetDefaults overwrote an explicitly set field: %d", o.PopulationSize)
	}
}
