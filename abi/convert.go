package abi

import "github.com/pluginbridge/bridge/wire"

// FromWire converts a wire.PluginData snapshot (the over-the-wire
// representation) into a Descriptor (the ABI-facing view with
// capability-gating helpers).
func FromWire(pd wire.PluginData) Descriptor {
	return Descriptor{
		CanSetParameter:    pd.CanSetParameter,
		CanGetParameter:    pd.CanGetParameter,
		CanReplacing:       pd.CanReplacing,
		CanDoublePrecision: pd.CanDoublePrecision,
		NumPrograms:        pd.NumPrograms,
		NumParams:          pd.NumParams,
		NumInputs:          pd.NumInputs,
		NumOutputs:         pd.NumOutputs,
		Flags:              pd.Flags,
		InitialDelay:       pd.InitialDelay,
		UniqueID:           pd.UniqueID,
		Version:            pd.Version,
	}
}

// ToWire converts a Descriptor back into its wire representation.
func (d Descriptor) ToWire() wire.PluginData {
	return wire.PluginData{
		CanSetParameter:    d.CanSetParameter,
		CanGetParameter:    d.CanGetParameter,
		CanReplacing:       d.CanReplacing,
		CanDoublePrecision: d.CanDoublePrecision,
		NumPrograms:        d.NumPrograms,
		NumParams:          d.NumParams,
		NumInputs:          d.NumInputs,
		NumOutputs:         d.NumOutputs,
		Flags:              d.Flags,
		InitialDelay:       d.InitialDelay,
		UniqueID:           d.UniqueID,
		Version:            d.Version,
	}
}
