package cmd

import (
	"io"
	"log"
	"time"

	"github.com/jaffee/commandeer"
	"github.com/spf13/cobra"
	"github.com/stevemn/udacity-dengr-lakes/termstat"
	"github.com/stevemn/udacity-dengr-lakes/usecase/sparkify"
)

// SparkifyMain is wrapped by NewSparkifyCommand and only exported for
// testing purposes.
var SparkifyMain *sparkify.Main

// NewSparkifyCommand returns a new cobra command wrapping SparkifyMain.
func NewSparkifyCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	SparkifyMain = sparkify.NewMain()
	sparkifyCommand := &cobra.Command{
		Use:   "sparkify",
		Short: "sparkify - build the star schema from raw song and log dumps",
		Long: `Reads the raw song catalog and play-event logs beneath the input
location and writes the songs, artists, users, time and songplays tables
beneath the output location as partitioned parquet.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			SparkifyMain.SetStatter(termstat.NewCollector(stderr))
			start := time.Now()
			if err := SparkifyMain.Run(); err != nil {
				return err
			}
			log.Println("Done: ", time.Since(start))
			return nil
		},
	}
	flags := sparkifyCommand.Flags()
	if err := commandeer.Flags(flags, SparkifyMain); err != nil {
		panic(err)
	}
	return sparkifyCommand
}

func init() {
	subcommandFns["sparkify"] = NewSparkifyCommand
}
