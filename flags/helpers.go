package flags

import (
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

// NewApp creates the skeleton CLI application the launcher fills in with
// flags, commands and the default action.
func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "namechain"
	app.Usage = "Namechain name-registry node"
	app.Version = "0.1.0"
	app.Writer = os.Stdout
	return app
}
