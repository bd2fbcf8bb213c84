package postgres

// Option can be used to change the configuration of an object.
type Option[T any] interface {
	apply(T)
}

type option[T any] func(T)

func newOption[T any](f func(T)) option[T] { return option[T](f) }

func (apply option[T]) apply(val T) { apply(val) }

// WithTableName allows you to specify a different journal table name
// that a Recorder should write to.
func WithTableName(tableName string) Option[*Recorder] {
	return newOption(func(recorder *Recorder) {
		recorder.tableName = tableName
	})
}
