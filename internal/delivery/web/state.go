package web

// Status — фаза загрузки данных представления.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ViewState — состояние представления: Idle, Loading, Loaded(data) или Failed(reason).
// Данные есть только в Loaded, причина — только в Failed.
type ViewState[T any] struct {
	status Status
	data   T
	reason string
}

func Idle[T any]() ViewState[T] {
	return ViewState[T]{status: StatusIdle}
}

func Loading[T any]() ViewState[T] {
	return ViewState[T]{status: StatusLoading}
}

func Loaded[T any](data T) ViewState[T] {
	return ViewState[T]{status: StatusLoaded, data: data}
}

func Failed[T any](reason string) ViewState[T] {
	return ViewState[T]{status: StatusFailed, reason: reason}
}

func (s ViewState[T]) Status() Status {
	return s.status
}

// Data возвращает данные и true, если состояние Loaded.
func (s ViewState[T]) Data() (T, bool) {
	return s.data, s.status == StatusLoaded
}

// Reason возвращает причину ошибки для состояния Failed.
func (s ViewState[T]) Reason() string {
	return s.reason
}

func (s ViewState[T]) IsIdle() bool    { return s.status == StatusIdle }
func (s ViewState[T]) IsLoading() bool { return s.status == StatusLoading }
func (s ViewState[T]) IsLoaded() bool  { return s.status == StatusLoaded }
func (s ViewState[T]) IsFailed() bool  { return s.status == StatusFailed }
