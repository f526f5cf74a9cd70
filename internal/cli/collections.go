package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	collectionrepo "github.com/fuzalab/fuza/internal/repository/collection"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List collections with their declared dimension",
	Args:  cobra.NoArgs,
	RunE:  runCollections,
}

func init() {
	rootCmd.AddCommand(collectionsCmd)
}

func runCollections(cmd *cobra.Command, _ []string) error {
	store, err := connectStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	repo := collectionrepo.New(store)
	names, err := repo.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("no collections")
		return nil
	}

	fmt.Printf("%-32s %-8s %-10s %s\n", "name", "dim", "distance", "created")
	for _, name := range names {
		col, err := repo.Get(cmd.Context(), name)
		if err != nil {
			return err
		}
		created := time.UnixMilli(col.CreatedAt()).UTC().Format(time.RFC3339)
		fmt.Printf("%-32s %-8d %-10s %s\n", col.Name(), col.Dim(), col.Distance(), created)
	}
	return nil
}
