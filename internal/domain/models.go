package domain

// Models lists every table the service owns, in migration order.
func Models() []interface{} {
	return []interface{}{
		&Operator{},
		&Project{},
		&Commission{},
		&ProjectHistory{},
		&ProjectTouch{},
		&ProductionLogistics{},
		&Contact{},
		&ProjectPhoto{},
		&ProjectProposal{},
		&ProjectFile{},
		&Estimate{},
		&ProjectEstimate{},
		&Location{},
		&ProcessedEmail{},
	}
}
