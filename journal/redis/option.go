package redis

import "time"

// Option can be used to change the configuration of an object.
type Option[T any] interface {
	apply(T)
}

type option[T any] func(T)

func newOption[T any](f func(T)) option[T] { return option[T](f) }

func (apply option[T]) apply(val T) { apply(val) }

// WithKeyPrefix allows you to specify a different prefix for the keys
// a Recorder writes.
func WithKeyPrefix(prefix string) Option[*Recorder] {
	return newOption(func(recorder *Recorder) {
		recorder.keyPrefix = prefix
	})
}

// WithTTL sets an expiration on recorded entries. By default entries
// are kept until deleted.
func WithTTL(ttl time.Duration) Option[*Recorder] {
	return newOption(func(recorder *Recorder) {
		recorder.ttl = ttl
	})
}

// WithHistoryLimit caps the number of transaction ids kept in each
// per-command recency index.
func WithHistoryLimit(limit int) Option[*Recorder] {
	return newOption(func(recorder *Recorder) {
		recorder.historyLimit = int64(limit)
	})
}
