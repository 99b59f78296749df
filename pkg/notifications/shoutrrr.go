package notifications

import (
	"fmt"
	"log"
	"strings"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/sirupsen/logrus"

	shoutrrrTypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
)

// router defines the interface for sending Shoutrrr notifications.
// It abstracts the underlying service implementation.
type router interface {
	Send(message string, params *shoutrrrTypes.Params) []error
}

// routerFactory creates a router delivering to the given service URL.
type routerFactory func(url string) (router, error)

// newShoutrrrRouter creates a Shoutrrr sender for url, logging Shoutrrr's own
// output at trace level.
func newShoutrrrRouter(url string) (router, error) {
	logger := log.New(logrus.StandardLogger().WriterLevel(logrus.TraceLevel), "Shoutrrr: ", 0)

	sender, err := shoutrrr.NewSender(logger, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errCreateRouterFailed, err)
	}

	return sender, nil
}

// GetScheme extracts the scheme part of a Shoutrrr URL.
// It returns "invalid" if no scheme is found.
func GetScheme(url string) string {
	schemeEnd := strings.Index(url, ":")
	if schemeEnd <= 0 {
		return "invalid"
	}

	return url[:schemeEnd]
}

// send delivers message through a router created for url and joins the
// per-service errors.
func send(newRouter routerFactory, url, message string, params *shoutrrrTypes.Params) error {
	sender, err := newRouter(url)
	if err != nil {
		return err
	}

	for _, err := range sender.Send(message, params) {
		if err != nil {
			return fmt.Errorf("%w via %s: %w", errSendFailed, GetScheme(url), err)
		}
	}

	return nil
}
