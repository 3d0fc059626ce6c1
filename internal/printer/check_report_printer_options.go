package printer

// CheckReportPrinterOptions controls how much detail CheckReportPrinter prints.
type CheckReportPrinterOptions struct {
	showAttempts bool
}

type CheckReportPrinterOption func(*CheckReportPrinterOptions) error

func defaultCheckReportPrinterOptions() CheckReportPrinterOptions {
	return CheckReportPrinterOptions{
		showAttempts: false,
	}
}

func NewCheckReportPrinterOptions(opts ...CheckReportPrinterOption) (CheckReportPrinterOptions, error) {
	options := defaultCheckReportPrinterOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return CheckReportPrinterOptions{}, err
		}
	}
	return options, nil
}

// WithAttempts prints every probe attempt below the verdict line.
func WithAttempts(enabled bool) CheckReportPrinterOption {
	return func(o *CheckReportPrinterOptions) error {
		o.showAttempts = enabled
		return nil
	}
}
