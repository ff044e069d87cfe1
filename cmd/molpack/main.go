// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/MolCrafts/molpack"
	"github.com/MolCrafts/molpack/chemfile"
	"github.com/MolCrafts/molpack/chemfile/xyz"
	"github.com/MolCrafts/molpack/diagnostics"
	store "github.com/MolCrafts/molpack/stores/sqlite"
	"github.com/MolCrafts/molpack/trajectory"
	"github.com/spf13/cobra"
)

var (
	errInvalidInput = errors.New("invalid input")
)

func main() {
	addFlags := func(cmd *cobra.Command) error {
		cmd.PersistentFlags().Bool("debug", false, "log debugging information")
		cmd.PersistentFlags().Bool("log-with-default-flags", false, "log with default flags")
		cmd.PersistentFlags().Bool("log-with-shortfile", false, "log with short file name")
		cmd.PersistentFlags().Bool("log-with-timestamp", false, "log with timestamp")
		cmd.PersistentFlags().Bool("quiet", false, "log less information")
		cmd.PersistentFlags().Bool("show-version", false, "show version")
		cmd.PersistentFlags().Bool("verbose", false, "log more information")
		return nil
	}
	var cmdRoot = &cobra.Command{
		Use:   "molpack",
		Short: "molecular geometry file utility",
		Long:  `Parse, check, and store XYZ molecular geometry files`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logWithDefaultFlags, _ := cmd.Flags().GetBool("log-with-default-flags")
			logWithShortFileName, _ := cmd.Flags().GetBool("log-with-shortfile")
			logWithTimestamp, _ := cmd.Flags().GetBool("log-with-timestamp")
			logFlags := 0
			if logWithShortFileName {
				logFlags |= log.Lshortfile
			}
			if logWithTimestamp {
				logFlags |= log.Ltime
			}
			if logWithDefaultFlags {
				logFlags = log.LstdFlags
			}
			log.SetFlags(logFlags)

			if showVersion, _ := cmd.Flags().GetBool("show-version"); showVersion {
				fmt.Printf("molpack: version %q\n", molpack.Version().Core())
			}

			return nil
		},
	}
	cmdRoot.AddCommand(cmdParse())
	cmdRoot.AddCommand(cmdFrames())
	cmdRoot.AddCommand(cmdCheck())
	cmdRoot.AddCommand(cmdDB())
	cmdRoot.AddCommand(cmdVersion())
	if err := addFlags(cmdRoot); err != nil {
		log.Fatal(err)
	}

	if err := cmdRoot.Execute(); err != nil {
		os.Exit(1)
	}
}

func cmdParse() *cobra.Command {
	strict := false
	var outputFile string
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().BoolVar(&strict, "strict", strict, "reject anything after the last atom, even a line break")
		cmd.Flags().StringVarP(&outputFile, "output", "o", outputFile, "save parse to file")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "parse <xyz-file>",
		Short:        "parse a single-frame XYZ file and print it as JSON",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1), // require path to xyz file
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			quiet, _ := cmd.Flags().GetBool("quiet")

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			} else if !utf8.Valid(data) {
				return fmt.Errorf("%s: %w", path, trajectory.ErrNotUTF8)
			}

			var record *xyz.Record
			if strict {
				record, err = xyz.Parse(string(data))
			} else {
				var t *trajectory.Trajectory
				t, err = trajectory.Read(context.Background(), filepath.Base(path), string(data), trajectory.WithLogger(newLogger(cmd)))
				if err == nil && t.Len() != 1 {
					return fmt.Errorf("%s: found %d frames, want 1", path, t.Len())
				} else if err == nil {
					record = t.Frames[0]
				}
			}
			if err != nil {
				return report(os.Stderr, path, err, 1)
			}

			if data, err := json.MarshalIndent(record, "", "  "); err != nil {
				log.Fatalf("json: %v\n", err)
			} else if outputFile == "" {
				fmt.Printf("%s\n", string(data))
			} else if err = os.WriteFile(outputFile, data, 0o644); err != nil {
				return err
			} else if !quiet {
				log.Printf("%s: wrote %d bytes\n", outputFile, len(data))
			}

			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdFrames() *cobra.Command {
	maxFrames := 0
	var cmd = &cobra.Command{
		Use:          "frames <xyz-file>",
		Short:        "list the frames of a trajectory file",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1), // require path to xyz file
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			t, err := trajectory.Load(context.Background(), args[0],
				trajectory.WithLogger(newLogger(cmd)),
				trajectory.WithMaxFrames(maxFrames),
			)
			if err != nil {
				return report(os.Stderr, args[0], err, 1)
			}
			for i, frame := range t.Frames {
				fmt.Printf("%6d %6d %s\n", i+1, frame.Len(), frame.Title)
			}
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				log.Printf("%s: %d frames in %v\n", args[0], t.Len(), time.Since(started))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxFrames, "max-frames", maxFrames, "stop with an error after this many frames (0 for no limit)")
	return cmd
}

func cmdCheck() *cobra.Command {
	contextLines := 1
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().IntVar(&contextLines, "context", contextLines, "number of source lines to show before an error")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "check <xyz-file> [<xyz-file>...]",
		Short:        "check that XYZ files parse, reporting every failure",
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1), // require path to xyz file
		RunE: func(cmd *cobra.Command, args []string) error {
			quiet, _ := cmd.Flags().GetBool("quiet")
			logger := newLogger(cmd)

			failed := 0
			for _, path := range args {
				t, err := trajectory.Load(context.Background(), path, trajectory.WithLogger(logger))
				if err != nil {
					failed++
					if err := report(os.Stderr, path, err, contextLines); !errors.Is(err, errInvalidInput) {
						return err
					}
					continue
				}
				if !quiet {
					log.Printf("%s: ok: %d frames\n", path, t.Len())
				}
			}
			if failed != 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdDB() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "db",
		Short: "manage the trajectory database",
	}
	cmd.PersistentFlags().String("db", "molpack.db", "path to the database file")
	cmd.AddCommand(cmdDBInit())
	cmd.AddCommand(cmdDBCompact())
	cmd.AddCommand(cmdDBImport())
	cmd.AddCommand(cmdDBList())
	return cmd
}

func cmdDBInit() *cobra.Command {
	return &cobra.Command{
		Use:          "init",
		Short:        "create a new database",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("db")
			if err := store.InitDatabase(path); err != nil {
				return err
			}
			log.Printf("%s: created\n", path)
			return nil
		},
	}
}

func cmdDBCompact() *cobra.Command {
	return &cobra.Command{
		Use:          "compact",
		Short:        "compact the database",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("db")
			return store.CompactDatabase(path)
		},
	}
}

func cmdDBImport() *cobra.Command {
	var cmd = &cobra.Command{
		Use:          "import <xyz-file> [<xyz-file>...]",
		Short:        "parse files and store their frames",
		Long:         `Parse files and store their frames. Files that fail to parse are recorded as parse failures.`,
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1), // require path to xyz file
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			dbPath, _ := cmd.Flags().GetString("db")
			quiet, _ := cmd.Flags().GetBool("quiet")

			s, err := store.NewSQLiteStoreWithConfig(store.StoreConfig{Path: dbPath})
			if err != nil {
				return err
			}
			defer s.Close()

			r, err := trajectory.New(trajectory.WithLogger(newLogger(cmd)))
			if err != nil {
				return err
			}

			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				sum := sha256.Sum256(data)
				hash := hex.EncodeToString(sum[:])

				if info, err := s.GetTrajectoryBySHA256(ctx, hash); err != nil {
					return err
				} else if info != nil {
					if !quiet {
						log.Printf("%s: already imported as %d\n", path, info.ID)
					}
					continue
				}

				t, err := r.Decode(ctx, path, data)
				if err != nil {
					pf := store.NewParseFailure(filepath.Base(path), hash, err)
					if _, err := s.InsertParseFailure(ctx, pf); err != nil {
						return err
					}
					log.Printf("%s: %s: %v\n", path, pf.ErrorCode, err)
					continue
				}
				id, err := s.InsertTrajectory(ctx, t, hash)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if !quiet {
					log.Printf("%s: imported %d frames as %d\n", path, t.Len(), id)
				}
			}
			return nil
		},
	}
	return cmd
}

func cmdDBList() *cobra.Command {
	showFailures := false
	var cmd = &cobra.Command{
		Use:          "list",
		Short:        "list stored trajectories",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			dbPath, _ := cmd.Flags().GetString("db")

			s, err := store.NewSQLiteStoreWithConfig(store.StoreConfig{Path: dbPath})
			if err != nil {
				return err
			}
			defer s.Close()

			if showFailures {
				list, err := s.ListParseFailures(ctx)
				if err != nil {
					return err
				}
				for _, pf := range list {
					fmt.Printf("%s %-24s frame %d %d:%d %s\n", pf.CreatedAt.Format(time.RFC3339), pf.ErrorCode, pf.FrameNo, pf.LineNo, pf.ColumnNo, pf.Name)
				}
				return nil
			}

			list, err := s.ListTrajectories(ctx)
			if err != nil {
				return err
			}
			for _, info := range list {
				fmt.Printf("%6d %.12s %6d %s\n", info.ID, info.SHA256, info.FrameCount, info.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showFailures, "failures", showFailures, "list parse failures instead")
	return cmd
}

func cmdVersion() *cobra.Command {
	showBuildInfo := false
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().BoolVar(&showBuildInfo, "build-info", showBuildInfo, "show build information")
		return nil
	}
	var cmd = &cobra.Command{
		Use:   "version",
		Short: "display the application's version number",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showBuildInfo {
				fmt.Println(molpack.Version().String())
				return nil
			}
			fmt.Println(molpack.Version().Core())
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

// newLogger returns a debug logger when --debug is set, otherwise nil.
func newLogger(cmd *cobra.Command) *slog.Logger {
	if debug, _ := cmd.Flags().GetBool("debug"); !debug {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// report writes an annotated snippet for parse failures and returns
// errInvalidInput. Any other error is returned unchanged.
func report(w io.Writer, path string, err error, contextLines int) error {
	var pe *chemfile.ParseError
	if !errors.As(err, &pe) {
		return err
	}
	var fe *trajectory.FrameError
	if errors.As(err, &fe) {
		fmt.Fprintf(w, "%s: frame %d: %s\n", path, fe.Index+1, chemfile.ErrorCode(err))
	}
	if rerr := pe.Render(w, diagnostics.WithFilename(path), diagnostics.WithContextLines(contextLines)); rerr != nil {
		return rerr
	}
	fmt.Fprintln(w)
	return errInvalidInput
}
