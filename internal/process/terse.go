package process

func ToTerseStatus(status string) int {
	if status == "success" {
		return 0
	}
	return 1
}

// ToTerseResult converts ResultSummary to ResultSummaryTerse.
func ToTerseResult(r ResultSummary) ResultSummaryTerse {
	return ResultSummaryTerse{
		Source:             r.Source,
		Status:             ToTerseStatus(r.Status),
		Error:              r.Error,
		EventCount:         r.EventCount,
		AnomalyCount:       r.AnomalyCount,
		LowConfidenceCount: r.LowConfidenceCount,
		TextLength:         r.TextLength,
		PageCount:          r.PageCount,
		OCRPages:           r.OCRPages,
		FromCache:          r.FromCache,
	}
}

// ToTerseStats converts Stats to StatsTerse.
func ToTerseStats(s Stats) StatsTerse {
	return StatsTerse{
		Total:   s.TotalDocuments,
		Success: s.Successful,
		Failed:  s.Failed,
		Time:    s.TotalTimeSeconds,
		Events:  s.TopEvents,
	}
}
