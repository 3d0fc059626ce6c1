package domain

// CheckReport is the serializable form of a ReachabilityResult.
type CheckReport struct {
	Input     string        `json:"input"              yaml:"input"`
	URL       string        `json:"url,omitempty"      yaml:"url,omitempty"`
	Reachable bool          `json:"reachable"          yaml:"reachable"`
	Verdict   Verdict       `json:"verdict"            yaml:"verdict"`
	Attempts  []ProbeReport `json:"attempts,omitempty" yaml:"attempts,omitempty"`
}

// ProbeReport is the serializable form of a ProbeOutcome.
type ProbeReport struct {
	Method    ProbeMethod `json:"method"           yaml:"method"`
	URL       string      `json:"url"              yaml:"url"`
	Status    int         `json:"status,omitempty" yaml:"status,omitempty"`
	Error     string      `json:"error,omitempty"  yaml:"error,omitempty"`
	LatencyMS int64       `json:"latencyMs"        yaml:"latency_ms"`
}

// Report converts the result into a form suitable for JSON or YAML output.
func (r ReachabilityResult) Report() CheckReport {
	report := CheckReport{
		Input:     r.Input,
		URL:       r.URL,
		Reachable: r.Reachable(),
		Verdict:   r.Verdict,
	}

	for _, a := range r.Attempts {
		p := ProbeReport{
			Method:    a.Method,
			URL:       a.URL,
			LatencyMS: a.Latency.Milliseconds(),
		}
		if a.StatusCode != nil {
			p.Status = *a.StatusCode
		}
		if a.Err != nil {
			p.Error = a.Err.Error()
		}
		report.Attempts = append(report.Attempts, p)
	}

	return report
}
