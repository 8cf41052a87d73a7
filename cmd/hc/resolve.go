package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"hc/internal/vaultctx"
	"hc/pkg/resolver"

	"github.com/spf13/cobra"
)

// Inject flags.
var (
	injectInput  string
	injectOutput string
)

// Run flags.
var runEnvVars []string

func init() {
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(injectCmd)
	rootCmd.AddCommand(runCmd)

	injectCmd.Flags().StringVarP(&injectInput, "input", "i", "", "Input template file ('-' for stdin)")
	injectCmd.Flags().StringVarP(&injectOutput, "output", "o", "", "Output file (default: stdout)")

	runCmd.Flags().StringArrayVar(&runEnvVars, "env", nil, "Environment variable (KEY=hc://vault/item/field, can be repeated)")
	runCmd.MarkFlagRequired("env")
}

// newResolver wires the resolver to the multi-vault unlocker. The
// --vault flag becomes the default for references without a vault name.
func newResolver() (*resolver.Resolver, error) {
	deps, err := appDeps()
	if err != nil {
		return nil, err
	}
	r := resolver.New(vaultctx.NewMulti(deps))
	r.DefaultVault = vaultFlag
	return r, nil
}

var readCmd = &cobra.Command{
	Use:   "read <uri>",
	Short: "Read a secret value from a hc:// reference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newResolver()
		if err != nil {
			return err
		}
		value, err := r.Resolve(args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var injectCmd = &cobra.Command{
	Use:   "inject [template]",
	Short: "Resolve every hc:// reference in a template",
	Long: `Resolve every hc:// or op:// reference in a template.

The template comes from the argument, from --input <file>, or from stdin
with --input -. All broken references are reported together; nothing is
written on failure.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		template, err := readTemplate(args)
		if err != nil {
			return err
		}

		r, err := newResolver()
		if err != nil {
			return err
		}
		resolved, err := r.ResolveTemplate(template)
		if err != nil {
			return err
		}

		if injectOutput == "" {
			fmt.Print(resolved)
			return nil
		}
		if err := os.WriteFile(injectOutput, []byte(resolved), 0o600); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		successf("Wrote %s", injectOutput)
		return nil
	},
}

func readTemplate(args []string) (string, error) {
	switch {
	case injectInput == "" && len(args) == 1:
		return args[0], nil
	case injectInput == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	case injectInput != "":
		data, err := os.ReadFile(injectInput)
		if err != nil {
			return "", fmt.Errorf("failed to read template: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("no template given (pass it as an argument or with --input)")
	}
}

var runCmd = &cobra.Command{
	Use:   "run --env KEY=hc://vault/item/field -- command [args...]",
	Short: "Run a command with secrets as environment variables",
	Long: `Run a command with resolved secret references in its environment.

Examples:
  hc run --env DB_PASSWORD=hc://prod/db/password -- psql
  hc run --env TOKEN=op://api/token -- ./deploy.sh`,
	DisableFlagsInUseLine: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dash := cmd.ArgsLenAtDash()
		if dash == -1 {
			return fmt.Errorf("no command specified; use: hc run --env KEY=hc://... -- command [args...]")
		}
		commandArgs := args[dash:]
		if len(commandArgs) == 0 {
			return fmt.Errorf("no command specified after '--'")
		}

		r, err := newResolver()
		if err != nil {
			return err
		}

		env := os.Environ()
		for _, pair := range runEnvVars {
			key, ref, ok := strings.Cut(pair, "=")
			if !ok || key == "" {
				return fmt.Errorf("invalid env format %q (expected KEY=hc://...)", pair)
			}
			value := ref
			if resolver.HasURIReferences(ref) {
				value, err = r.Resolve(ref)
				if err != nil {
					return fmt.Errorf("failed to resolve %s: %w", key, err)
				}
			}
			env = append(env, key+"="+value)
		}

		path, err := exec.LookPath(commandArgs[0])
		if err != nil {
			return fmt.Errorf("command not found: %s", commandArgs[0])
		}
		child := exec.Command(path, commandArgs[1:]...)
		child.Env = env
		child.Stdin = os.Stdin
		child.Stdout = os.Stdout
		child.Stderr = os.Stderr

		if err := child.Run(); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				os.Exit(exitErr.ExitCode())
			}
			return err
		}
		return nil
	},
}
