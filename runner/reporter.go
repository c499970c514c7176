package runner

import (
	"github.com/rs/zerolog"

	"github.com/specgo/specgo/model"
)

// Reporter observes run progress. Reporters are fire-and-forget: the runner
// recovers panics and never lets an observer abort the run.
//
// Sequential execution delivers SpecCompleted per spec; parallel execution
// delivers BatchCompleted once per batch.
type Reporter interface {
	RunStarting(total int)
	SpecCompleted(result model.SpecResult)
	BatchCompleted(results []model.SpecResult)
	RunCompleted(report *model.SpecReport)
}

// LogReporter writes run progress through a zerolog logger.
type LogReporter struct {
	Logger zerolog.Logger
}

func (l LogReporter) RunStarting(total int) {
	l.Logger.Info().Int("specs", total).Msg("Run starting")
}

func (l LogReporter) SpecCompleted(result model.SpecResult) {
	ev := l.Logger.Info().
		Str("status", result.Status.String()).
		Dur("duration", result.Duration)
	if result.Failure != nil {
		ev = ev.Str("error", result.Failure.Message)
	}
	ev.Msg(result.Status.Symbol() + " " + result.FullDescription())
}

func (l LogReporter) BatchCompleted(results []model.SpecResult) {
	for _, res := range results {
		l.SpecCompleted(res)
	}
}

func (l LogReporter) RunCompleted(report *model.SpecReport) {
	l.Logger.Info().
		Int("total", report.Summary.Total).
		Int("passed", report.Summary.Passed).
		Int("failed", report.Summary.Failed).
		Int("pending", report.Summary.Pending).
		Int("skipped", report.Summary.Skipped).
		Dur("duration", report.Duration).
		Msg("Run completed")
}
