// Command docchat serves question answering over an indexed document collection.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	_ "go.uber.org/automaxprocs"

	"github.com/hubenschmidt/docchat/config"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	configFile string
	v          = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Answer questions from indexed documents",
	Long: `docchat answers questions using the documents most similar to them.

Settings come from docchat.yaml (or --config), DOCCHAT_* environment
variables and flags. OPENAI_API_KEY is read from the environment or a
.env file in the working directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./docchat.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: json or console")
	bindFlags(rootCmd.PersistentFlags(), map[string]string{
		"log.level":  "log-level",
		"log.format": "log-format",
	})
	rootCmd.Version = Version
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	return config.Load(v, configFile)
}

// bindFlags makes each flag override its config key when set.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}
