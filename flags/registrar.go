package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// RegistrarFlags covers network selection and the owner-mutable registry
// configuration.
func RegistrarFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "network",
			Usage: "Registry network to join (main|test|fake)",
			Value: "main",
		},
		cli.IntFlag{
			Name:  "fake.accounts",
			Usage: "Number of pre-funded genesis accounts on a fake network",
			Value: 10,
		},
		cli.StringFlag{
			Name:  "registrar.owner",
			Usage: "Account allowed to change registry configuration (hex address)",
		},
		cli.StringFlag{
			Name:  "registrar.receiver",
			Usage: "Account registration payments are swept to (hex address)",
		},
		cli.Uint64Flag{
			Name:  "registrar.launchtime",
			Usage: "Registry launch time as a Unix timestamp (0 = genesis time)",
		},
	}
}
