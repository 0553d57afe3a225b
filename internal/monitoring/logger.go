package monitoring

import (
	"log/slog"
	"os"
	"time"
)

// Logger provides structured JSON logging with placement-domain helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a JSON logger writing to stdout.
func NewLogger() *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// RequestLogger logs HTTP request details.
func (l *Logger) RequestLogger(method, path, ip, userAgent string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"user_agent", userAgent,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// EvaluationLogger logs one candidate-job match evaluation.
func (l *Logger) EvaluationLogger(candidateID, jobID, decision string, score float64, riskLevel string, duration time.Duration) {
	l.Info("Match Evaluated",
		"candidate_id", candidateID,
		"job_id", jobID,
		"decision", decision,
		"score", score,
		"risk_level", riskLevel,
		"duration_ms", duration.Milliseconds(),
	)
}

// AllocationLogger logs a completed seat allocation run.
func (l *Logger) AllocationLogger(jobID string, poolSize, seats, ineligible int, cutoff float64, duration time.Duration) {
	l.Info("Seats Allocated",
		"job_id", jobID,
		"pool_size", poolSize,
		"seats", seats,
		"ineligible", ineligible,
		"cutoff_score", cutoff,
		"duration_ms", duration.Milliseconds(),
	)
}

// SimulationLogger logs a temporal growth simulation.
func (l *Logger) SimulationLogger(candidateID string, semesters int, cgpaDelta, credibilityDelta float64, duration time.Duration) {
	l.Info("Growth Simulated",
		"candidate_id", candidateID,
		"semesters", semesters,
		"cgpa_delta", cgpaDelta,
		"credibility_delta", credibilityDelta,
		"duration_ms", duration.Milliseconds(),
	)
}

// TrainingLogger logs a predictor training run.
func (l *Logger) TrainingLogger(samples, epochs int, finalLoss float64, duration time.Duration) {
	l.Info("Predictor Trained",
		"samples", samples,
		"epochs", epochs,
		"final_loss", finalLoss,
		"duration_ms", duration.Milliseconds(),
	)
}

// AuditLogger logs a fairness audit.
func (l *Logger) AuditLogger(outcomes int, fairnessScore float64, recommendations int, duration time.Duration) {
	l.Info("Fairness Audited",
		"outcomes", outcomes,
		"fairness_score", fairnessScore,
		"recommendations", recommendations,
		"duration_ms", duration.Milliseconds(),
	)
}

// SystemLogger logs lifecycle events.
func (l *Logger) SystemLogger(event, details string) {
	l.Info("System Event",
		"event", event,
		"details", details,
		"uptime", time.Since(startTime).String(),
	)
}

// SetLevel resets the logging level.
func (l *Logger) SetLevel(level slog.Level) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	})
	l.Logger = slog.New(handler)
}

var startTime = time.Now()
