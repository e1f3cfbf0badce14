package log

import (
	"log/slog"

	"github.com/simon020286/go-step-iterator/models"
)

func Step(step *models.Step) slog.Attr {
	if step == nil {
		return slog.String("step", "")
	}
	return slog.String("step", step.String())
}

func StepKind(kind models.StepKind) slog.Attr {
	return slog.String("step_kind", string(kind))
}

func Event(event models.EventType) slog.Attr {
	return slog.String("event", string(event))
}

func InstanceID(id string) slog.Attr {
	return slog.String("instance_id", id)
}

func RunID(id string) slog.Attr {
	return slog.String("run_id", id)
}

func Settled(settled bool) slog.Attr {
	return slog.Bool("settled", settled)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}
