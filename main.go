package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"restmagic-cli/display"
	"restmagic-cli/notebook"
	"restmagic-cli/parser"
	"restmagic-cli/runtime"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "restmagic [flags] [METHOD] URL [HTTP/x.y]",
	Short: "Send HTTP requests written in a compact text shorthand",
	Long: `Send an HTTP request written as

  [METHOD] URL [HTTP/x.y]
  Header: value

  body

The first line is taken from the arguments, headers and body from --file or
standard input. $name and ${name} in the file are expanded from variables.`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         execute,
}

var runCmd = &cobra.Command{
	Use:   "run NOTEBOOK...",
	Short: "Run notebooks of %rest, %rest_root and %rest_session magics",
	Args:  cobra.MinimumNArgs(1),
	RunE:  run,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println("restmagic " + version)
	},
}

// config holds flag defaults read from restmagic.yaml.
var config = viper.New()

func init() {
	p := rootCmd.PersistentFlags()
	p.String("config", "", "config file (default ./restmagic.yaml or $HOME/.config/restmagic/restmagic.yaml)")
	p.StringP("environment", "e", "", "environment of "+runtime.EnvironmentFileName+" to take variables from")
	p.String("environment-file", runtime.EnvironmentFileName, "environments file")
	p.StringSlice("env-file", nil, "dotenv files to take variables from")
	p.StringToString("var", nil, "variables, as name=value")
	p.Bool("os-env", false, "take variables from the process environment")
	p.Bool("no-color", false, "disable colored output")

	f := rootCmd.Flags()
	notebook.AddFlags(f)
	f.StringP("file", "f", "", "file holding headers and body, - for standard input")
	f.Bool("ignore-stdin", false, "do not read headers and body from standard input")

	if err := viper.BindPFlags(p); err != nil {
		panic(err)
	}

	rootCmd.PersistentPreRunE = loadConfig
	rootCmd.AddCommand(runCmd, extractCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
	os.Exit(0)
}

func loadConfig(_ *cobra.Command, _ []string) error {
	if file := viper.GetString("config"); file != "" {
		config.SetConfigFile(file)
	} else {
		config.SetConfigName("restmagic")
		config.AddConfigPath(".")
		config.AddConfigPath("$HOME/.config/restmagic")
	}
	if err := config.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errors.Wrap(err, "reading config")
		}
	}
	return nil
}

func newDisplay(cmd *cobra.Command) *display.Display {
	noColor := viper.GetBool("no-color") || !isatty.IsTerminal(os.Stdout.Fd())
	return display.New(
		display.WithWriter(cmd.OutOrStdout()),
		display.WithErrWriter(cmd.ErrOrStderr()),
		display.WithNoColor(noColor),
	)
}

// variables collects the expansion namespace, later sources overriding
// earlier ones: builtins, process environment, environments file, dotenv
// files, --var.
func variables(cmd *cobra.Command) (parser.Namespace, error) {
	ns := parser.Builtins()
	if viper.GetBool("os-env") {
		ns = ns.With(parser.Environ())
	}

	env, err := runtime.ReadEnvironment(viper.GetString("environment-file"), viper.GetString("environment"))
	if err != nil {
		return nil, err
	}
	dotenv, err := runtime.ReadVariables(viper.GetStringSlice("env-file")...)
	if err != nil {
		return nil, err
	}
	vars, err := cmd.Flags().GetStringToString("var")
	if err != nil {
		return nil, err
	}
	return ns.With(env, dotenv, vars), nil
}

func newMagic(cmd *cobra.Command) (*notebook.Magic, error) {
	ns, err := variables(cmd)
	if err != nil {
		return nil, err
	}
	return notebook.New(
		notebook.WithConfig(config),
		notebook.WithVariables(ns),
		notebook.WithDisplay(newDisplay(cmd)),
	), nil
}

func execute(cmd *cobra.Command, _ []string) error {
	m, err := newMagic(cmd)
	if err != nil {
		return err
	}
	cell, err := readCell(cmd)
	if err != nil {
		return err
	}
	_, err = m.Call(cmd.Context(), cmd.Flags(), cell)
	return err
}

func readCell(cmd *cobra.Command) (string, error) {
	file, _ := cmd.Flags().GetString("file")
	ignoreStdin, _ := cmd.Flags().GetBool("ignore-stdin")

	var r io.Reader
	switch {
	case file == "-":
		r = cmd.InOrStdin()
	case file != "":
		f, err := os.Open(file)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	case !ignoreStdin && !isatty.IsTerminal(os.Stdin.Fd()):
		r = cmd.InOrStdin()
	default:
		return "", nil
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "reading request")
	}
	return string(b), nil
}

func run(cmd *cobra.Command, args []string) error {
	m, err := newMagic(cmd)
	if err != nil {
		return err
	}
	var cells []notebook.Cell
	for _, name := range args {
		c, err := notebook.ReadFile(name)
		if err != nil {
			return err
		}
		cells = append(cells, c...)
	}
	return m.Run(cmd.Context(), cells)
}
