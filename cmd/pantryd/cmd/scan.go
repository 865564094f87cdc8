package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/openpantry/pantryd/internal/pipeline"
)

// scanCmd represents the scan command.
var scanCmd = &cobra.Command{
	Use:   "scan [image file]",
	Short: "Scan a receipt image from the command line",
	Long: `Scan a single receipt image and print the detected items.

The image goes through the same pipeline as the API: validation, OCR,
line parsing, and ingredient matching. Matching requires a warm
vocabulary, from the configured database or the local snapshot file.

Examples:
  pantryd scan receipt.jpg
  pantryd scan receipt.png --format yaml
  pantryd scan receipt.jpg --languages deu --output items.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		format, _ := cmd.Flags().GetString("format")
		languages, _ := cmd.Flags().GetString("languages")
		outputPath, _ := cmd.Flags().GetString("output")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading image file: %w", err)
		}

		ctx := context.Background()

		pool, err := newDatabasePool(ctx, cfg)
		if err != nil {
			return err
		}
		if pool != nil {
			defer pool.Close()
		}

		cache, err := newVocabulary(cfg, pool, nil)
		if err != nil {
			return err
		}
		defer func() { _ = cache.Close() }()

		if err := cache.Warm(ctx); err != nil {
			return fmt.Errorf("loading ingredient vocabulary: %w", err)
		}

		engine, err := newEngine(ctx, cfg)
		if err != nil {
			return err
		}

		p, err := newPipeline(cfg, engine, cache, nil)
		if err != nil {
			return err
		}
		defer func() { _ = p.Close() }()

		res, err := p.ProcessReceipt(ctx, data, http.DetectContentType(data), languages)
		if err != nil {
			return fmt.Errorf("scanning receipt: %w", err)
		}

		var out []byte
		switch format {
		case "json":
			out, err = pipeline.ToJSON(res)
		case "yaml":
			out, err = pipeline.ToYAML(res)
		case "text":
			out = pipeline.ToText(res)
		default:
			return fmt.Errorf("unknown output format %q (want json, yaml, or text)", format)
		}
		if err != nil {
			return err
		}

		if outputPath != "" {
			return os.WriteFile(outputPath, out, 0o644)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringP("format", "f", "text", "output format (json, yaml, text)")
	scanCmd.Flags().StringP("languages", "l", "", "OCR language hint, e.g. deu or eng+deu")
	scanCmd.Flags().StringP("output", "o", "", "write output to file instead of stdout")
}
