package operations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func runTestCommand(flags []cli.Flag, args []string, action func(c *cli.Context) error) error {
	app := cli.NewApp()
	app.Commands = []cli.Command{
		{
			Name:   "test",
			Flags:  flags,
			Action: action,
		},
	}
	return app.Run(append([]string{"netbreak", "test"}, args...))
}

func TestBaseFlags(t *testing.T) {
	assert := assert.New(t)

	flags := baseFlags(dbFlags()...)
	flagMap := map[string]cli.Flag{}
	for _, f := range flags {
		flagMap[f.GetName()] = f
	}

	expected := []string{"workers", "output, o", "bucketType", "bucketPrefix", "dbUri", "dbName"}
	for _, n := range expected {
		_, ok := flagMap[n]
		assert.True(ok, n)
	}
}

func TestIndexArgument(t *testing.T) {
	for name, test := range map[string]struct {
		args     []string
		expected *int
		err      bool
	}{
		"None":         {args: []string{}},
		"Positive":     {args: []string{"3"}, expected: intPtr(3)},
		"Negative":     {args: []string{"--", "-1"}, expected: intPtr(-1)},
		"NotAnInteger": {args: []string{"last"}, err: true},
		"TooMany":      {args: []string{"1", "2"}, err: true},
	} {
		t.Run(name, func(t *testing.T) {
			var index *int
			var err error
			require.NoError(t, runTestCommand(baseFlags(), test.args, func(c *cli.Context) error {
				index, err = indexArgument(c)
				return nil
			}))

			if test.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, index)
		})
	}
}

func TestServiceConf(t *testing.T) {
	var conf *serviceConf
	require.NoError(t, runTestCommand(baseFlags(dbFlags()...), []string{"--workers", "7", "-o", "out"}, func(c *cli.Context) error {
		conf = newServiceConf(c)
		return nil
	}))

	exported := conf.export()
	assert.Equal(t, 7, exported.NumWorkers)
	assert.Equal(t, "out", exported.OutputPath)
	assert.Equal(t, "local", exported.BucketType)
	assert.Empty(t, exported.MongoDBURI)
	assert.Empty(t, exported.DatabaseName)
	assert.False(t, exported.HasDatabase())

	require.NoError(t, runTestCommand(baseFlags(dbFlags()...), []string{"--dbUri", "mongodb://localhost:27017"}, func(c *cli.Context) error {
		conf = newServiceConf(c)
		return nil
	}))
	assert.Equal(t, "netbreak", conf.export().DatabaseName)
}

func intPtr(i int) *int { return &i }
