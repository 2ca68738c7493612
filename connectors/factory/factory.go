package factory

import (
	"fmt"

	"github.com/kilianp07/nexthour/connectors"
	"github.com/kilianp07/nexthour/connectors/clients/elprisen"
	"github.com/kilianp07/nexthour/connectors/clients/static"
)

const (
	IDElprisen = elprisen.ID
	IDStatic   = static.ID
)

var (
	errUnknownClient = "unknown connector id: %s"
)

// NewPriceClient builds the connector registered under id.
func NewPriceClient(id string, opts ...connectors.Option) (connectors.PriceClient, error) {
	var (
		c   connectors.PriceClient
		err error
	)
	switch id {
	case IDElprisen, "":
		c, err = elprisen.NewClient(opts...)
	case IDStatic:
		c, err = static.NewClient(opts...)
	default:
		return nil, fmt.Errorf(errUnknownClient, id)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
