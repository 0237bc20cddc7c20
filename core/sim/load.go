package sim

// LoadModel selects the instantaneous platform draw for one configuration
// and decides whether the scheduled transmission can run.
type LoadModel struct {
	loads       LoadsConfig
	tx          TransmissionConfig
	txWidthDeg  float64
	nominalW    float64
	txEnergyWh  float64 // energy of one full transmission
	txLoadWh    float64 // energy the nominal load consumes alongside it
}

// NewLoadModel builds the load model. The transmission window opens once per
// orbit at phase zero and spans the angle the session duration sweeps.
func NewLoadModel(cfg Config) LoadModel {
	nominal := cfg.Loads.NominalW()
	return LoadModel{
		loads:      cfg.Loads,
		tx:         cfg.Transmission,
		txWidthDeg: cfg.Transmission.WindowWidthDeg(cfg.Time.OrbitPeriodSeconds),
		nominalW:   nominal,
		txEnergyWh: cfg.Transmission.PowerW * cfg.Transmission.DurationSeconds / 3600,
		txLoadWh:   nominal * cfg.Transmission.DurationSeconds / 3600,
	}
}

// Power returns the total draw in watts for the step and whether the
// transmitter is on. prevSOC is the state of charge entering the step and
// capacityWh the effective battery capacity at this mission age.
//
// Safe mode sheds everything but the on-board computer while prevSOC is
// strictly below the threshold. A transmission is attempted only in the
// sunlit window at the start of the orbit, and only if the battery can fund
// the session, the nominal load alongside it, and still hold the reserve.
func (m LoadModel) Power(prevSOC float64, g Geometry, capacityWh float64) (float64, bool) {
	load := m.nominalW
	if prevSOC < m.loads.SafeModeSOC {
		load = m.loads.OBCW
	}
	if !g.Sunlit || g.ThetaDeg > m.txWidthDeg {
		return load, false
	}
	available := prevSOC * capacityWh
	reserve := m.tx.ReserveFraction * capacityWh
	if available-m.txLoadWh <= reserve+m.txEnergyWh {
		return load, false
	}
	return load + m.tx.PowerW, true
}
