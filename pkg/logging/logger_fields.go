package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Component field helpers for common component names
func Component(name string) Field {
	return String("component", name)
}

func NodeName(name string) Field {
	return String("node", name)
}

func Channel(name string) Field {
	return String("channel", name)
}

func Round(number int) Field {
	return Int("round", number)
}

func Experiment(name string) Field {
	return String("experiment", name)
}

func Application(name string) Field {
	return String("application", name)
}

func Instruction(tag string) Field {
	return String("instruction", tag)
}

func LogType(logType string) Field {
	return String("log_type", logType)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}
