package main

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/born-ml/kernels/internal/cpuid"
	"github.com/born-ml/kernels/internal/envconfig"
	"github.com/born-ml/kernels/internal/kernel"
	"github.com/born-ml/kernels/internal/layers/batchnorm"
	"github.com/born-ml/kernels/internal/layers/elu"
	"github.com/born-ml/kernels/internal/layers/transposedconv2d"
	"github.com/born-ml/kernels/internal/linreg"
	"github.com/born-ml/kernels/internal/logutil"
	"github.com/born-ml/kernels/internal/qr"
	"github.com/born-ml/kernels/internal/ridge"
	"github.com/born-ml/kernels/internal/svd"
	"github.com/born-ml/kernels/internal/tensor"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// registry is the part of a kernel registry the CLI reports on.
type registry interface {
	Name() string
	Keys() []kernel.Key
}

func registries() []registry {
	return []registry{
		svd.Registry(),
		qr.Registry(),
		linreg.Registry(),
		linreg.Distributed().Step1,
		linreg.Distributed().Step2,
		ridge.Registry(),
		ridge.Distributed().Step1,
		ridge.Distributed().Step2,
		elu.ForwardRegistry(),
		elu.BackwardRegistry(),
		batchnorm.ForwardRegistry(),
		batchnorm.BackwardRegistry(),
		transposedconv2d.ForwardRegistry(),
		transposedconv2d.BackwardRegistry(),
	}
}

func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-26s %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.SetAutoWrapText(false)
	return table
}

func versionHandler(cmd *cobra.Command, _ []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "kernels version %s\n", version)
}

// CPUHandler prints the detected variant, the override and every variant
// this CPU supports.
func CPUHandler(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "detected: %s\n", cpuid.Detect())
	fmt.Fprintf(out, "active:   %s\n", cpuid.Active())
	if cpuid.IsOverridden() {
		fmt.Fprintf(out, "override: %s\n", envconfig.CPU())
	}

	var data [][]string
	for _, isa := range cpuid.All {
		data = append(data, []string{
			isa.String(),
			fmt.Sprint(cpuid.Available(isa)),
			fmt.Sprint(cpuid.LaneWidth(isa, tensor.Float32)),
			fmt.Sprint(cpuid.LaneWidth(isa, tensor.Float64)),
		})
	}
	table := newTable(out, []string{"VARIANT", "SUPPORTED", "F32 LANES", "F64 LANES"})
	table.AppendBulk(data)
	table.Render()
	return nil
}

// ListHandler prints the registered kernels, one row per algorithm, precision
// and method. Every row covers all CPU variants registered for it.
func ListHandler(cmd *cobra.Command, args []string) error {
	var data [][]string
	for _, r := range registries() {
		if len(args) > 0 && !slices.ContainsFunc(args, func(a string) bool { return strings.HasPrefix(r.Name(), a) }) {
			continue
		}
		type group struct {
			precision string
			method    int
		}
		variants := map[group][]string{}
		var order []group
		for _, k := range r.Keys() {
			g := group{k.Precision.String(), k.Method}
			if _, ok := variants[g]; !ok {
				order = append(order, g)
			}
			variants[g] = append(variants[g], k.Variant.String())
		}
		for _, g := range order {
			data = append(data, []string{r.Name(), g.precision, fmt.Sprint(g.method), strings.Join(variants[g], ",")})
		}
	}

	table := newTable(cmd.OutOrStdout(), []string{"ALGORITHM", "PRECISION", "METHOD", "VARIANTS"})
	table.AppendBulk(data)
	table.Render()
	return nil
}

// EnvHandler prints the configuration variables and their current values.
func EnvHandler(cmd *cobra.Command, _ []string) error {
	env := envconfig.AsMap()
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	slices.Sort(names)

	var data [][]string
	for _, name := range names {
		data = append(data, []string{name, fmt.Sprint(env[name].Value), env[name].Description})
	}
	table := newTable(cmd.OutOrStdout(), []string{"NAME", "VALUE", "DESCRIPTION"})
	table.AppendBulk(data)
	table.Render()
	return nil
}

// NewCLI creates the root command with every subcommand.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "kernels",
		Short:         "Numerical kernels with CPU variant dispatch",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(logutil.NewLogger(cmd.ErrOrStderr(), envconfig.LogLevel()))
		},
		Run: func(cmd *cobra.Command, args []string) {
			if v, _ := cmd.Flags().GetBool("version"); v {
				versionHandler(cmd, args)
				return
			}
			cmd.Print(cmd.UsageString())
		},
	}
	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run:   versionHandler,
	}

	cpuCmd := &cobra.Command{
		Use:   "cpu",
		Short: "Show the detected CPU variant",
		Args:  cobra.NoArgs,
		RunE:  CPUHandler,
	}

	listCmd := &cobra.Command{
		Use:     "list [ALGORITHM...]",
		Aliases: []string{"ls"},
		Short:   "List registered kernels",
		RunE:    ListHandler,
	}

	envCmd := &cobra.Command{
		Use:   "env",
		Short: "Show configuration variables",
		Args:  cobra.NoArgs,
		RunE:  EnvHandler,
	}

	selftestCmd := &cobra.Command{
		Use:   "selftest",
		Short: "Run every algorithm on a small problem",
		Args:  cobra.NoArgs,
		RunE:  SelftestHandler,
	}
	selftestCmd.Flags().String("variant", "", "CPU variant to select instead of the active one")
	selftestCmd.Flags().Bool("post-check", envconfig.PostCheck(), "Validate results after every kernel run")

	env := envconfig.AsMap()
	envs := []envconfig.EnvVar{env["BORN_KERNELS_CPU"], env["BORN_KERNELS_DEBUG"], env["BORN_KERNELS_MAX_ALLOC"], env["BORN_KERNELS_NUM_THREADS"], env["BORN_KERNELS_POST_CHECK"]}
	for _, cmd := range []*cobra.Command{cpuCmd, listCmd, selftestCmd} {
		appendEnvDocs(cmd, envs)
	}

	rootCmd.AddCommand(versionCmd, cpuCmd, listCmd, envCmd, selftestCmd)
	return rootCmd
}
