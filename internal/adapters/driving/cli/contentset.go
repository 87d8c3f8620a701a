package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/restgate/internal/adapters/driven/dirwatch"
	"github.com/custodia-labs/restgate/internal/core/domain"
	"github.com/custodia-labs/restgate/internal/core/ports/driving"
)

var contentSetCmd = &cobra.Command{
	Use:     "contentset",
	Aliases: []string{"content-set"},
	Short:   "Manage static content sets",
	Long: `Manage the static content sets of services.

A content set is referenced by its ID or by its request path ("/static")
within the service given by --service.`,
}

var contentSetAddCmd = &cobra.Command{
	Use:   "add [request-path]",
	Short: "Add a content set, optionally uploading a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runContentSetAdd,
}

var contentSetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List content sets",
	Args:  cobra.NoArgs,
	RunE:  runContentSetList,
}

var contentSetGetCmd = &cobra.Command{
	Use:   "get [content-set]",
	Short: "Show a content set",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runContentSetGet,
}

var contentSetEnableCmd = &cobra.Command{
	Use:   "enable [content-set]",
	Short: "Enable content sets",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runContentSetEnable,
}

var contentSetDisableCmd = &cobra.Command{
	Use:   "disable [content-set]",
	Short: "Disable content sets",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runContentSetDisable,
}

var contentSetDeleteCmd = &cobra.Command{
	Use:   "delete [content-set]",
	Short: "Delete content sets with their files",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runContentSetDelete,
}

var contentSetUpdateCmd = &cobra.Command{
	Use:   "update [content-set]",
	Short: "Apply a value document to a content set",
	Long: `Apply a JSON value document to a content set. Allowed keys are
request_path, requires_auth, enabled, comments and options.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runContentSetUpdate,
}

var contentSetFilesCmd = &cobra.Command{
	Use:   "files [content-set]",
	Short: "List the files of a content set",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runContentSetFiles,
}

var contentSetSyncCmd = &cobra.Command{
	Use:   "sync [content-set] <directory>",
	Short: "Replace the files of a content set with a directory",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runContentSetSync,
}

var contentSetWatchCmd = &cobra.Command{
	Use:   "watch [content-set] <directory>",
	Short: "Keep a content set in sync with a directory",
	Long: `Upload a directory into a content set and upload it again whenever
files below it change. Runs until interrupted.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runContentSetWatch,
}

// Flags shared by the content set commands.
var (
	contentSetService string
	contentSetAll     bool
)

// Flags for contentset add.
var (
	contentSetAddDir          string
	contentSetAddRequiresAuth bool
	contentSetAddComments     string
	contentSetAddOptions      string
	contentSetAddDisabled     bool
)

var contentSetUpdateDoc string

// watchQuiet and watchInterval pace contentset watch.
var (
	watchQuiet    = dirwatch.DefaultQuiet
	watchInterval = dirwatch.DefaultInterval
)

func init() {
	contentSetCmd.PersistentFlags().StringVarP(&contentSetService, "service", "s", "",
		"service reference (ID, host/context-root or /context-root)")

	f := contentSetAddCmd.Flags()
	f.StringVar(&contentSetAddDir, "dir", "", "directory whose files are uploaded")
	f.BoolVar(&contentSetAddRequiresAuth, "requires-auth", false, "require authentication")
	f.StringVar(&contentSetAddComments, "comments", "", "comments")
	f.StringVar(&contentSetAddOptions, "options", "", "options as a JSON object, @file or -")
	f.BoolVar(&contentSetAddDisabled, "disabled", false, "create the content set disabled")

	contentSetListCmd.Flags().BoolVarP(&contentSetAll, "all", "a", false, "list the content sets of all services")
	contentSetUpdateCmd.Flags().StringVar(&contentSetUpdateDoc, "doc", "", "value document as JSON, @file or -")

	contentSetCmd.AddCommand(contentSetAddCmd)
	contentSetCmd.AddCommand(contentSetListCmd)
	contentSetCmd.AddCommand(contentSetGetCmd)
	contentSetCmd.AddCommand(contentSetEnableCmd)
	contentSetCmd.AddCommand(contentSetDisableCmd)
	contentSetCmd.AddCommand(contentSetDeleteCmd)
	contentSetCmd.AddCommand(contentSetUpdateCmd)
	contentSetCmd.AddCommand(contentSetFilesCmd)
	contentSetCmd.AddCommand(contentSetSyncCmd)
	contentSetCmd.AddCommand(contentSetWatchCmd)
	rootCmd.AddCommand(contentSetCmd)
}

func runContentSetAdd(cmd *cobra.Command, args []string) error {
	if err := requireContentSetAdmin(); err != nil {
		return err
	}
	sel, err := serviceSelector(contentSetService)
	if err != nil {
		return err
	}
	options, err := readOptions(contentSetAddOptions, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("invalid --options: %w", err)
	}
	req := domain.NewContentSet{
		RequestPath:  optionalArg(args),
		RequiresAuth: contentSetAddRequiresAuth,
		Comments:     contentSetAddComments,
		Options:      options,
		ContentDir:   contentSetAddDir,
	}
	if contentSetAddDisabled {
		req.Enabled = lo.ToPtr(false)
	}

	res, err := contentSetAdmin.Add(cmd.Context(), interaction(), sel, req)
	if err != nil {
		return fmt.Errorf("failed to add content set: %w", err)
	}
	if flagJSON {
		return printJSON(cmd, res)
	}
	cmd.Printf("Content set created with %d files.\n", res.FilesUploaded)
	cmd.Printf("  ID: %s\n", res.ContentSetID)
	return nil
}

func runContentSetList(cmd *cobra.Command, _ []string) error {
	if err := requireContentSetAdmin(); err != nil {
		return err
	}
	var scope *domain.ServiceSelector
	if !contentSetAll {
		sel, err := serviceSelector(contentSetService)
		if err != nil {
			return err
		}
		scope = &sel
	}
	sets, err := contentSetAdmin.List(cmd.Context(), interaction(), scope)
	if err != nil {
		return fmt.Errorf("failed to list content sets: %w", err)
	}
	if flagJSON {
		return printJSON(cmd, sets)
	}
	if len(sets) == 0 {
		cmd.Println("No content sets configured.")
		return nil
	}
	cmd.Println("Content sets:")
	cmd.Println()
	for i := range sets {
		cs := &sets[i]
		label := cs.FullPath()
		if !cs.Enabled {
			label += " (disabled)"
		}
		cmd.Printf("  %s\n", label)
		cmd.Printf("    ID:            %s\n", cs.ID)
		cmd.Printf("    Requires auth: %t\n", cs.RequiresAuth)
		if cs.Comments != "" {
			cmd.Printf("    Comments:      %s\n", cs.Comments)
		}
		cmd.Println()
	}
	cmd.Printf("Total: %d content sets\n", len(sets))
	return nil
}

func runContentSetGet(cmd *cobra.Command, args []string) error {
	if err := requireContentSetAdmin(); err != nil {
		return err
	}
	sel, err := contentSetSelector(optionalArg(args), contentSetService)
	if err != nil {
		return err
	}
	cs, err := contentSetAdmin.Get(cmd.Context(), interaction(), sel)
	if err != nil {
		return fmt.Errorf("failed to get content set: %w", err)
	}
	if flagJSON {
		return printJSON(cmd, cs)
	}
	cmd.Printf("Content set: %s\n\n", cs.FullPath())
	cmd.Printf("  ID:            %s\n", cs.ID)
	cmd.Printf("  Service:       %s\n", cs.ServiceID)
	cmd.Printf("  Enabled:       %t\n", cs.Enabled)
	cmd.Printf("  Requires auth: %t\n", cs.RequiresAuth)
	if cs.Comments != "" {
		cmd.Printf("  Comments:      %s\n", cs.Comments)
	}
	return nil
}

type contentSetOp func(
	driving.ContentSetAdmin, context.Context, domain.Interaction, domain.ContentSetSelector,
) (domain.Outcome, error)

func runContentSetEnable(cmd *cobra.Command, args []string) error {
	return runContentSetMutation(cmd, args, driving.ContentSetAdmin.Enable)
}

func runContentSetDisable(cmd *cobra.Command, args []string) error {
	return runContentSetMutation(cmd, args, driving.ContentSetAdmin.Disable)
}

func runContentSetDelete(cmd *cobra.Command, args []string) error {
	return runContentSetMutation(cmd, args, driving.ContentSetAdmin.Delete)
}

func runContentSetMutation(cmd *cobra.Command, args []string, op contentSetOp) error {
	if err := requireContentSetAdmin(); err != nil {
		return err
	}
	sel, err := contentSetSelector(optionalArg(args), contentSetService)
	if err != nil {
		return err
	}
	out, err := op(contentSetAdmin, cmd.Context(), interaction(), sel)
	if err != nil {
		return err
	}
	return report(cmd, out)
}

func runContentSetUpdate(cmd *cobra.Command, args []string) error {
	if err := requireContentSetAdmin(); err != nil {
		return err
	}
	if contentSetUpdateDoc == "" {
		return fmt.Errorf("%w: --doc is required", domain.ErrValidation)
	}
	sel, err := contentSetSelector(optionalArg(args), contentSetService)
	if err != nil {
		return err
	}
	doc, err := readDocument(contentSetUpdateDoc, cmd.InOrStdin())
	if err != nil {
		return err
	}
	out, err := contentSetAdmin.Update(cmd.Context(), interaction(), sel, doc)
	if err != nil {
		return err
	}
	return report(cmd, out)
}

func runContentSetFiles(cmd *cobra.Command, args []string) error {
	if err := requireContentSetAdmin(); err != nil {
		return err
	}
	sel, err := contentSetSelector(optionalArg(args), contentSetService)
	if err != nil {
		return err
	}
	files, err := contentSetAdmin.Files(cmd.Context(), interaction(), sel)
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}
	if flagJSON {
		return printJSON(cmd, files)
	}
	if len(files) == 0 {
		cmd.Println("No files uploaded.")
		return nil
	}
	for i := range files {
		cmd.Printf("  %-40s %8d bytes\n", files[i].RequestPath, files[i].Size)
	}
	cmd.Printf("Total: %d files\n", len(files))
	return nil
}

func runContentSetSync(cmd *cobra.Command, args []string) error {
	if err := requireContentSetAdmin(); err != nil {
		return err
	}
	ref, dir := splitValueArgs(args)
	sel, err := contentSetSelector(ref, contentSetService)
	if err != nil {
		return err
	}
	res, err := contentSetAdmin.SyncDirectory(cmd.Context(), interaction(), sel, dir)
	if err != nil {
		return fmt.Errorf("failed to sync content set: %w", err)
	}
	if flagJSON {
		return printJSON(cmd, res)
	}
	cmd.Printf("Uploaded %d files.\n", res.FilesUploaded)
	return nil
}

func runContentSetWatch(cmd *cobra.Command, args []string) error {
	if err := requireContentSetAdmin(); err != nil {
		return err
	}
	ref, dir := splitValueArgs(args)
	sel, err := contentSetSelector(ref, contentSetService)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	// Resolve once so later uploads never prompt.
	cs, err := contentSetAdmin.Get(ctx, interaction(), sel)
	if err != nil {
		return err
	}
	sel = domain.ContentSetSelector{ID: &cs.ID}

	watcher, err := dirwatch.New(dir, watchQuiet, watchInterval)
	if err != nil {
		return err
	}
	defer watcher.Close()

	upload := func() error {
		res, err := contentSetAdmin.SyncDirectory(ctx, domain.Scripted, sel, dir)
		if err != nil {
			return err
		}
		cmd.Printf("[%s] uploaded %d files to %s\n", time.Now().Format("15:04:05"), res.FilesUploaded, cs.FullPath())
		return nil
	}
	if err := upload(); err != nil {
		return fmt.Errorf("failed to sync content set: %w", err)
	}
	cmd.Printf("Watching %s, press Ctrl+C to stop.\n", dir)

	for range watcher.Watch(ctx) {
		if err := upload(); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			cmd.PrintErrf("sync failed: %v\n", err)
		}
	}
	return nil
}
