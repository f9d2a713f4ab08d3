package vocabulary

// Default returns the built-in phrase table covering the common Statement
// of Facts port-call events. Shipping lines with house conventions should
// load their own table instead (see Load).
func Default() *Vocabulary {
	return New([]Phrase{
		{
			Canonical: "Vessel Arrived",
			Aliases:   []string{"arrived at port", "arrival", "end of sea passage", "eosp", "vessel berthed", "anchored at roads"},
			Sequence:  1,
		},
		{
			Canonical: "NOR Tendered",
			Aliases:   []string{"notice of readiness tendered", "n.o.r. tendered", "nor given", "notice of readiness"},
			Sequence:  2,
		},
		{
			Canonical: "NOR Accepted",
			Aliases:   []string{"notice of readiness accepted", "n.o.r. accepted"},
		},
		{
			Canonical: "Pilot on Board",
			Aliases:   []string{"pilot boarded", "pob"},
		},
		{
			Canonical: "All Fast",
			Aliases:   []string{"made all fast", "vessel all fast", "mooring completed"},
		},
		{
			Canonical: "Loading Commenced",
			Aliases:   []string{"commenced loading", "loading started", "cargo operations commenced"},
			Sequence:  3,
			PairKey:   "loading",
			PairRole:  RoleStart,
		},
		{
			Canonical: "Loading Completed",
			Aliases:   []string{"completed loading", "loading finished", "cargo operations completed"},
			Sequence:  4,
			PairKey:   "loading",
			PairRole:  RoleEnd,
		},
		{
			Canonical: "Discharging Commenced",
			Aliases:   []string{"commenced discharging", "discharge commenced", "discharging started"},
			PairKey:   "discharging",
			PairRole:  RoleStart,
		},
		{
			Canonical: "Discharging Completed",
			Aliases:   []string{"completed discharging", "discharge completed", "discharging finished"},
			PairKey:   "discharging",
			PairRole:  RoleEnd,
		},
		{
			Canonical: "Hoses Connected",
			Aliases:   []string{"hose connected"},
			PairKey:   "hoses",
			PairRole:  RoleStart,
		},
		{
			Canonical: "Hoses Disconnected",
			Aliases:   []string{"hose disconnected"},
			PairKey:   "hoses",
			PairRole:  RoleEnd,
		},
		{
			Canonical: "Weather Delay",
			Aliases:   []string{"stopped due to weather", "rain stopped work", "weather interruption"},
		},
		{
			Canonical: "Vessel Sailed",
			Aliases:   []string{"sailed", "departed", "vessel departed", "left berth", "commenced sea passage"},
			Sequence:  5,
		},
	})
}
