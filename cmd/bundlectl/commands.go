package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/graphbundle/bundle"
	"github.com/syssam/graphbundle/bundle/codec"
	"github.com/syssam/graphbundle/persist"
	"github.com/syssam/graphbundle/schema"
	"github.com/syssam/graphbundle/schema/archival"
	"github.com/syssam/graphbundle/serialize"
	"github.com/syssam/graphbundle/validate"
)

func newImportCmd(e *env) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Validate bundle files and save them to the graph store",
		Long: "Validate every bundle of every file first, then save them in order. " +
			"Nothing is saved when any bundle is invalid.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var bs []*bundle.Bundle
			for _, path := range args {
				more, err := readBundles(cmd.InOrStdin(), path, format)
				if err != nil {
					return err
				}
				bs = append(bs, more...)
			}
			reg, err := e.registry()
			if err != nil {
				return err
			}
			store, closeStore, err := e.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			ids, err := persist.SaveAll(cmd.Context(), validate.New(reg, validate.WithLogger(e.slog())), store, bs)
			if err != nil {
				var verr *validate.ValidationError
				if errors.As(err, &verr) {
					printErrors(cmd, verr.Errors)
				}
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			e.log.Info("import finished", zap.Int("bundles", len(ids)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "input format (default from file extension)")
	return cmd
}

func newSerializeCmd(e *env) *cobra.Command {
	var (
		format        string
		lite          bool
		include       []string
		maxDepth      int
		dependentOnly bool
		workers       int
	)
	cmd := &cobra.Command{
		Use:   "serialize <id>...",
		Short: "Write records of the graph store as bundles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := pickCodec(format, "-")
			if err != nil {
				return err
			}
			reg, err := e.registry()
			if err != nil {
				return err
			}
			store, closeStore, err := e.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			cfg := serialize.NewConfig().
				WithLiteMode(lite).
				WithIncludedProperties(include...).
				WithDependentOnly(dependentOnly).
				WithCache(serialize.NewMemoryCache())
			if maxDepth >= 0 {
				cfg = cfg.WithMaxDepth(maxDepth)
			}
			s := serialize.New(store, reg,
				serialize.WithConfig(cfg),
				serialize.WithLogger(e.slog()),
				serialize.WithWorkers(workers),
			)
			bs, err := s.ByIDs(cmd.Context(), args)
			if err != nil {
				return err
			}
			e.log.Debug("serialize finished", zap.Stringer("stats", s.Stats().Stats()))
			return writeBundles(cmd.OutOrStdout(), c, bs)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&format, "format", "f", "json", "output format: "+fmt.Sprint(codec.Names()))
	f.BoolVar(&lite, "lite", false, "emit only mandatory properties of non-root records")
	f.StringSliceVar(&include, "include", nil, "optional properties kept in lite mode")
	f.IntVar(&maxDepth, "max-depth", -1, fmt.Sprintf("relation depth limit (default %d)", serialize.DefaultMaxDepth))
	f.BoolVar(&dependentOnly, "dependent-only", false, "follow only dependent relations")
	f.IntVar(&workers, "workers", 4, "records serialized concurrently")
	return cmd
}

func newValidateCmd(e *env) *cobra.Command {
	var (
		format string
		watch  bool
	)
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a bundle file against the schema",
		Long: "Check every bundle of a file and print the error tree of invalid ones. " +
			"With --watch, the check runs again whenever the --schema file changes.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bs, err := readBundles(cmd.InOrStdin(), args[0], format)
			if err != nil {
				return err
			}
			if !watch {
				reg, err := e.registry()
				if err != nil {
					return err
				}
				return checkBundles(cmd, e, reg, bs)
			}
			if e.schemaPath == "" {
				return errors.New("--watch requires --schema")
			}
			return schema.Watch(cmd.Context(), e.schemaPath, func(reg *schema.Registry, err error) {
				if err != nil {
					e.log.Warn("schema not loaded", zap.Error(err))
					return
				}
				if err := checkBundles(cmd, e, reg, bs); err != nil {
					e.log.Warn("validation failed", zap.Error(err))
				}
			}, archival.Definitions()...)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "input format (default from file extension)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "revalidate when the schema file changes")
	return cmd
}

// checkBundles validates bs and prints one line per valid bundle or the
// error tree of an invalid one.
func checkBundles(cmd *cobra.Command, e *env, reg *schema.Registry, bs []*bundle.Bundle) error {
	v := validate.New(reg, validate.WithLogger(e.slog()))
	var failed int
	for i, b := range bs {
		errs, err := v.Errors(b)
		if err != nil {
			return fmt.Errorf("bundle %d: %w", i, err)
		}
		if errs.IsEmpty() {
			fmt.Fprintf(cmd.OutOrStdout(), "bundle %d: ok\n", i)
			continue
		}
		failed++
		fmt.Fprintf(cmd.OutOrStdout(), "bundle %d: %d errors\n", i, errs.Count())
		printErrors(cmd, errs)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d bundles invalid", failed, len(bs))
	}
	return nil
}

func printErrors(cmd *cobra.Command, errs *bundle.ErrorSet) {
	out, err := json.MarshalIndent(errs, "", "  ")
	if err != nil {
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
}

func newGetCmd(*env) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "get <file> <path>",
		Short: "Print the property or child bundle at a path",
		Example: "  bundlectl get unit.json identifier\n" +
			"  bundlectl get unit.json 'describes[0]/name'",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bs, err := readBundles(cmd.InOrStdin(), args[0], format)
			if err != nil {
				return err
			}
			if len(bs) != 1 {
				return fmt.Errorf("%s: expected one bundle, got %d", args[0], len(bs))
			}
			v, err := bs[0].Get(args[1])
			if err != nil {
				return err
			}
			if child, ok := v.(*bundle.Bundle); ok {
				return writeBundles(cmd.OutOrStdout(), codec.JSON{}, []*bundle.Bundle{child})
			}
			out, err := json.Marshal(v)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "input format (default from file extension)")
	return cmd
}

func newConvertCmd(e *env) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Re-encode bundle files between formats",
		Long:  "Formats are taken from the file extensions unless --from or --to is given. Use - for standard input or output.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bs, err := readBundles(cmd.InOrStdin(), args[0], from)
			if err != nil {
				return err
			}
			c, err := pickCodec(to, args[1])
			if err != nil {
				return err
			}
			if len(bs) > 1 && c.Name() != "json" && c.Name() != "yaml" {
				return fmt.Errorf("%s holds %d bundles; %s output takes one", args[0], len(bs), c.Name())
			}
			if args[1] == "-" {
				return writeBundles(cmd.OutOrStdout(), c, bs)
			}
			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			if err := writeBundles(f, c, bs); err != nil {
				f.Close()
				return err
			}
			e.log.Debug("converted", zap.String("in", args[0]), zap.String("out", args[1]), zap.String("format", c.Name()))
			return f.Close()
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "input format")
	cmd.Flags().StringVar(&to, "to", "", "output format")
	return cmd
}
