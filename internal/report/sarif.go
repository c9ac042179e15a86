package report

import (
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"
	"github.com/redactyl/confscan/internal/types"
)

// InformationURI is advertised as the SARIF tool driver URI.
const InformationURI = "https://github.com/redactyl/confscan"

func sevToLevel(s types.Severity) string {
	switch s {
	case types.SevHigh:
		return "error"
	case types.SevMed:
		return "warning"
	default:
		return "note"
	}
}

// WriteSARIF writes findings as SARIF 2.1.0. Each distinct rule becomes a
// driver rule in first-seen order; results carry the baseline fingerprint.
func WriteSARIF(w io.Writer, findings []types.Finding, toolVersion string) error {
	rep, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}
	run := sarif.NewRunWithInformationURI("confscan", InformationURI)
	if toolVersion != "" {
		run.Tool.Driver.WithVersion(toolVersion)
	}

	seen := map[string]bool{}
	for _, f := range findings {
		if !seen[f.Rule] {
			seen[f.Rule] = true
			run.AddRule(f.Rule).
				WithDescription(f.Description).
				WithProperties(sarif.Properties{
					"category": string(f.Category),
					"severity": string(f.Severity),
				})
		}

		region := sarif.NewSimpleRegion(f.Line, f.Line)
		if f.Column > 0 {
			region = region.WithStartColumn(f.Column)
		}
		loc := sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewSimpleArtifactLocation(f.Path)).
			WithRegion(region)

		msg := f.Description
		if msg == "" {
			msg = f.Rule
		}
		run.CreateResultForRule(f.Rule).
			WithLevel(sevToLevel(f.Severity)).
			WithMessage(sarif.NewTextMessage(msg)).
			WithPartialFingerPrints(map[string]interface{}{"confscan/v1": Fingerprint(f)}).
			AddLocation(sarif.NewLocationWithPhysicalLocation(loc))
	}

	rep.AddRun(run)
	return rep.PrettyWrite(w)
}
