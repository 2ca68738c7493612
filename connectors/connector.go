package connectors

import (
	"context"
	"time"

	"github.com/kilianp07/nexthour/core/model"
)

// ErrIncompatibleOption is the format of errors returned when an option is
// applied to a connector that does not support it.
const ErrIncompatibleOption = "option %s is not compatible with connector %s"

// PriceClient fetches the hourly prices of a calendar day for a partition.
type PriceClient interface {
	Fetch(ctx context.Context, date time.Time, partition string) (model.Series, error)
}

// Option configures a PriceClient.
type Option func(PriceClient) error
