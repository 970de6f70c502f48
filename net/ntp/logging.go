package ntp

import (
	"log/slog"
	"time"
)

type ReferenceIDLogValuer struct {
	ID *ReferenceID
}

func (v ReferenceIDLogValuer) LogValue() slog.Value {
	if v.ID == nil {
		return slog.StringValue("none")
	}
	switch v.ID.Kind {
	case ReferenceIDKissODeath:
		return slog.GroupValue(slog.String("kiss code", v.ID.Code))
	case ReferenceIDPrimary:
		if v.ID.Source == "" {
			return slog.GroupValue(slog.String("source", "unrecognized"))
		}
		return slog.GroupValue(slog.String("source", v.ID.Source))
	default:
		return slog.GroupValue(slog.Uint64("value", uint64(v.ID.Value)))
	}
}

type MessageLogValuer struct {
	Msg *Message
}

func (v MessageLogValuer) LogValue() slog.Value {
	optTime := func(t *time.Time) slog.Value {
		if t == nil {
			return slog.StringValue("unspecified")
		}
		return slog.TimeValue(*t)
	}
	return slog.GroupValue(
		slog.Uint64("LeapIndicator", uint64(v.Msg.LeapIndicator)),
		slog.Uint64("Version", uint64(v.Msg.Version)),
		slog.Uint64("Mode", uint64(v.Msg.Mode)),
		slog.Uint64("Stratum", uint64(v.Msg.Stratum)),
		slog.Uint64("Poll", uint64(v.Msg.Poll)),
		slog.Int64("Precision", int64(v.Msg.Precision)),
		slog.Int64("RootDelay", int64(v.Msg.RootDelay)),
		slog.Uint64("RootDispersion", uint64(v.Msg.RootDispersion)),
		slog.Any("ReferenceID", ReferenceIDLogValuer{ID: v.Msg.ReferenceID}),
		slog.Any("ReferenceTime", optTime(v.Msg.ReferenceTime)),
		slog.Any("OriginTime", optTime(v.Msg.OriginTime)),
		slog.Any("ReceiveTime", optTime(v.Msg.ReceiveTime)),
		slog.Time("TransmitTime", v.Msg.TransmitTime),
	)
}
