package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// NodeFlags holds knobs specific to the local node instance.
func NodeFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "identity",
			Usage: "Custom node name used in logs and config dumps",
		},
		cli.IntFlag{
			Name:  "cache",
			Usage: "Megabytes of memory allocated to internal caching",
			Value: 1024,
		},
		cli.StringFlag{
			Name:  "preset",
			Usage: "Runtime preset (lite|default|full|archive)",
			Value: "default",
		},
		cli.StringFlag{
			Name:  "datadir.chaindata",
			Usage: "Override path to the registry DB (defaults to <datadir>/chaindata)",
		},
	}
}
