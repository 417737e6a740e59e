package cbcsuite

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/drand/cbcsuite/common/log"
	"github.com/drand/cbcsuite/internal/config"
	"github.com/drand/cbcsuite/suite"
)

// parseOffer reads the peer's offer. Codes are kept even when they are not
// registered locally, the way they would arrive on the wire.
func parseOffer(r *suite.Registry, offer string) ([]uint16, error) {
	var codes []uint16
	for _, part := range splitList(offer) {
		if code, err := suite.ParseCode(part); err == nil {
			codes = append(codes, code)
			continue
		}
		s, err := r.LookupName(part)
		if err != nil {
			return nil, err
		}
		codes = append(codes, s.Code)
	}
	return codes, nil
}

func negotiateCmd(c *cli.Context, conf *config.Config) error {
	l := log.FromContextOrDefault(c.Context)
	offered, err := parseOffer(conf.Registry(), c.String(offerFlag.Name))
	if err != nil {
		return err
	}
	s, err := conf.Registry().Negotiate(offered, conf.Preference())
	if err != nil {
		l.Warnw("negotiation failed", "offered", len(offered), "err", err)
		return err
	}
	l.Debugw("negotiated", "code", s.CodeString(), "suite", s.Name)

	if c.Bool(jsonFlag.Name) {
		return printJSON(c, toSuiteJSON(s))
	}
	_, err = fmt.Fprintf(c.App.Writer, "%s %s\n", s.CodeString(), s.Name)
	return err
}
