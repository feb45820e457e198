package operations

import (
	"os"

	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// this package contains validator functions passed to command and
// subcommand functions to check the contents of flags.

func requireFlagSet(name string) cli.BeforeFunc {
	return func(c *cli.Context) error {
		if !c.IsSet(name) {
			return errors.Errorf("flag '--%s' was not specified", name)
		}
		return nil
	}
}

func requireFileExistsIfSet(name string) cli.BeforeFunc {
	return func(c *cli.Context) error {
		path := c.String(name)
		if path == "" {
			return nil
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return errors.Errorf("file '%s' does not exist", path)
		}

		return nil
	}
}

func requireIndexArgument(c *cli.Context) error {
	_, err := indexArgument(c)
	return err
}

func mergeBeforeFuncs(ops ...func(c *cli.Context) error) cli.BeforeFunc {
	return func(c *cli.Context) error {
		catcher := grip.NewBasicCatcher()

		for _, op := range ops {
			catcher.Add(op(c))
		}

		return catcher.Resolve()
	}
}
