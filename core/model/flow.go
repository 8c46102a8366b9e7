package model

// FlowThresholdKW is the power below which a flow is drawn as idle.
const FlowThresholdKW = 0.1

// Flow tells which energy paths are active during an interval.
type Flow struct {
	Solar       bool `json:"solar"`
	Charging    bool `json:"charging"`
	Discharging bool `json:"discharging"`
	Injecting   bool `json:"injecting"`
	Drawing     bool `json:"drawing"`
}

// ClassifyFlow derives the active paths from one interval's powers.
func ClassifyFlow(productionKW, batteryKW, gridKW float64) Flow {
	return Flow{
		Solar:       productionKW > FlowThresholdKW,
		Charging:    batteryKW < -FlowThresholdKW,
		Discharging: batteryKW > FlowThresholdKW,
		Injecting:   gridKW > FlowThresholdKW,
		Drawing:     gridKW < -FlowThresholdKW,
	}
}
