package provider

// Category is a coarse grouping of HTTP failures that drives user messaging
// and exit behavior.
type Category string

const (
	CategoryInput  Category = "input"
	CategoryRate   Category = "rate"
	CategoryServer Category = "server"
	CategoryOther  Category = "other"
)

func (c Category) String() string { return string(c) }

// Classify maps an HTTP status to a Category. A zero status means no status
// was available and classifies as CategoryOther.
func Classify(status int) Category {
	switch {
	case status == 400, status == 404, status == 422:
		return CategoryInput
	case status == 429:
		return CategoryRate
	case status >= 500 && status <= 599:
		return CategoryServer
	default:
		return CategoryOther
	}
}
