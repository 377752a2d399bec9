package main

import (
	"fmt"
	"os"
	"time"

	"market/analyzer/internal/domain"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// importFile is the on-disk batch format. JSON files parse as YAML too.
type importFile struct {
	UpdateDate string `yaml:"updateDate"`
	Items      []struct {
		ID       string `yaml:"id"`
		Name     string `yaml:"name"`
		ParentID string `yaml:"parentId"`
		Type     string `yaml:"type"`
		Price    *int64 `yaml:"price"`
	} `yaml:"items"`
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Send import batches from YAML or JSON files to a running analyzer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			for _, path := range args {
				req, err := readImportFile(path)
				if err != nil {
					return err
				}
				if err := c.Import(cmd.Context(), *req); err != nil {
					return fmt.Errorf("failed to import %s: %w", path, err)
				}
				log.Infof("✅ Imported %d units from %s", len(req.Items), path)
			}
			return nil
		},
	}
}

func readImportFile(path string) (*domain.ShopUnitImportRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parseImport(data)
}

func parseImport(data []byte) (*domain.ShopUnitImportRequest, error) {
	var f importFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode import file: %w", err)
	}

	date, err := time.Parse(time.RFC3339, f.UpdateDate)
	if err != nil {
		return nil, fmt.Errorf("invalid updateDate %q: %w", f.UpdateDate, err)
	}

	req := &domain.ShopUnitImportRequest{
		UpdateDate: date,
		Items:      make([]domain.ShopUnitImport, 0, len(f.Items)),
	}
	for i, item := range f.Items {
		id, err := uuid.Parse(item.ID)
		if err != nil {
			return nil, fmt.Errorf("item %d: invalid id: %w", i, err)
		}
		unitType, err := domain.ParseShopUnitType(item.Type)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		unit := domain.ShopUnitImport{ID: id, Name: item.Name, Type: unitType, Price: item.Price}
		if item.ParentID != "" {
			parent, err := uuid.Parse(item.ParentID)
			if err != nil {
				return nil, fmt.Errorf("item %d: invalid parentId: %w", i, err)
			}
			unit.ParentID = &parent
		}
		req.Items = append(req.Items, unit)
	}

	return req, nil
}
