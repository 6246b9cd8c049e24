package main

import (
	"fmt"
	"strings"

	"github.com/mika/artist-ledger/internal/store"
	"github.com/mika/artist-ledger/internal/template"
	"github.com/mika/artist-ledger/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage import templates",
}

var templateAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a new import template",
	Long: `Save a new column-to-field mapping recipe for one external source.

Headers are the source file's column labels in order. Each --map binds
a canonical field (artist, source, amount, revenueDate, description,
track, album, campaign, integration) to a header label, or to a
zero-based column position with field=#N.

Example:
  arl template add --name spotify-monthly --category Digital \
    --headers "Date,Amt,Who,Src" \
    --map revenueDate=Date --map amount=Amt --map artist=Who --map source=Src`,
	RunE: runTemplateAdd,
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved templates",
	RunE:  runTemplateList,
}

var templateShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one template's headers and mappings",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateShow,
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.AddCommand(templateAddCmd, templateListCmd, templateShowCmd)

	templateAddCmd.Flags().String("name", "", "template name (required)")
	templateAddCmd.Flags().String("source", "", "originating platform name")
	templateAddCmd.Flags().String("category", "", "category applied to imported entries")
	templateAddCmd.Flags().String("headers", "", "comma-separated expected column labels (required)")
	templateAddCmd.Flags().StringSlice("map", nil, "field=column binding, repeatable (required)")
	templateAddCmd.MarkFlagRequired("name")
	templateAddCmd.MarkFlagRequired("headers")
	templateAddCmd.MarkFlagRequired("map")
}

func runTemplateAdd(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	source, _ := cmd.Flags().GetString("source")
	category, _ := cmd.Flags().GetString("category")
	headerList, _ := cmd.Flags().GetString("headers")
	bindings, _ := cmd.Flags().GetStringSlice("map")

	var headers []string
	for _, h := range strings.Split(headerList, ",") {
		headers = append(headers, strings.TrimSpace(h))
	}

	mappings := make(map[template.Field]template.ColumnRef, len(bindings))
	for _, binding := range bindings {
		field, column, ok := strings.Cut(binding, "=")
		if !ok {
			return fmt.Errorf("bad --map %q (want field=column)", binding)
		}
		ref := template.ColumnRef{Label: column}
		if strings.HasPrefix(column, "#") {
			var index int
			if _, err := fmt.Sscanf(column, "#%d", &index); err != nil {
				return fmt.Errorf("bad --map position %q (want #N)", column)
			}
			ref = template.ColumnRef{Index: index, Positional: true}
		}
		mappings[template.Field(field)] = ref
	}

	rawHeaders, err := template.EncodeHeaders(headers)
	if err != nil {
		return err
	}
	rawMappings, err := template.EncodeMappings(mappings)
	if err != nil {
		return err
	}

	db, err := store.Open(viper.GetString("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	tpl := &template.Template{
		Name:        name,
		SourceName:  source,
		Category:    category,
		RawHeaders:  rawHeaders,
		RawMappings: rawMappings,
	}
	if err := db.InsertTemplate(tpl); err != nil {
		return err
	}

	util.SuccessLog("Saved template %q (%d)", tpl.Name, tpl.ID)
	return nil
}

func runTemplateList(cmd *cobra.Command, args []string) error {
	db, err := store.Open(viper.GetString("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	templates, err := db.ListTemplates()
	if err != nil {
		return err
	}
	if len(templates) == 0 {
		fmt.Println("No templates saved yet.")
		return nil
	}

	for _, tpl := range templates {
		line := fmt.Sprintf("%-4d %-24s", tpl.ID, tpl.Name)
		if tpl.Category != "" {
			line += "  category=" + tpl.Category
		}
		if tpl.SourceName != "" {
			line += "  source=" + tpl.SourceName
		}
		fmt.Println(line)
	}
	return nil
}

func runTemplateShow(cmd *cobra.Command, args []string) error {
	db, err := store.Open(viper.GetString("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	tpl, err := db.GetTemplateByName(args[0])
	if err != nil {
		return err
	}
	if tpl == nil {
		return fmt.Errorf("no template named %q", args[0])
	}

	headers, err := tpl.Headers()
	if err != nil {
		return err
	}
	mappings, err := tpl.FieldMappings()
	if err != nil {
		return err
	}

	fmt.Printf("Template:  %s (%d)\n", tpl.Name, tpl.ID)
	if tpl.SourceName != "" {
		fmt.Printf("Source:    %s\n", tpl.SourceName)
	}
	if tpl.Category != "" {
		fmt.Printf("Category:  %s\n", tpl.Category)
	}
	fmt.Printf("Headers:   %s\n", strings.Join(headers, ", "))
	fmt.Println("Mappings:")
	for _, field := range template.AllFields {
		if ref, ok := mappings[field]; ok {
			fmt.Printf("  %-12s -> %s\n", field, ref)
		}
	}
	return nil
}
