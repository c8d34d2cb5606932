// Package sqlite loads the enrichment inputs from the energy-library
// SQLite extract.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	enrichment "akenergy-data/internal/enrichment/domain"
)

// Repository reads the City, Utility, CityUtilityLink and
// MiscellaneousInformation tables.
type Repository struct {
	db *sqlx.DB
}

// NewRepository constructs a repository over an open library database.
func NewRepository(db *sqlx.DB) (*Repository, error) {
	if db == nil {
		return nil, errors.New("sqlite repository: nil db")
	}
	return &Repository{db: db}, nil
}

type communityRow struct {
	ID                   int             `db:"ID"`
	Name                 string          `db:"Name"`
	Latitude             sql.NullFloat64 `db:"Latitude"`
	Longitude            sql.NullFloat64 `db:"Longitude"`
	ERHRegionID          sql.NullInt64   `db:"ERHRegionID"`
	WAPRegionID          sql.NullInt64   `db:"WAPRegionID"`
	ImprovementCostLevel sql.NullInt64   `db:"ImprovementCostLevel"`
	FuelRefer            sql.NullInt64   `db:"FuelRefer"`
	FuelCityID           sql.NullInt64   `db:"FuelCityID"`
	Oil1Price            sql.NullFloat64 `db:"Oil1Price"`
	Oil2Price            sql.NullFloat64 `db:"Oil2Price"`
	PropanePrice         sql.NullFloat64 `db:"PropanePrice"`
	BirchPrice           sql.NullFloat64 `db:"BirchPrice"`
	SprucePrice          sql.NullFloat64 `db:"SprucePrice"`
	CoalPrice            sql.NullFloat64 `db:"CoalPrice"`
	SteamPrice           sql.NullFloat64 `db:"SteamPrice"`
	HotWaterPrice        sql.NullFloat64 `db:"HotWaterPrice"`
	MunicipalSalesTax    sql.NullFloat64 `db:"MunicipalSalesTax"`
	BoroughSalesTax      sql.NullFloat64 `db:"BoroughSalesTax"`
}

// Communities returns the active communities that have a latitude, the
// same filter the dataset has always applied.
func (r *Repository) Communities(ctx context.Context) ([]enrichment.Community, error) {
	const query = `
SELECT ID, Name, Latitude, Longitude, ERHRegionID, WAPRegionID,
       ImprovementCostLevel, FuelRefer, FuelCityID,
       Oil1Price, Oil2Price, PropanePrice, BirchPrice, SprucePrice,
       CoalPrice, SteamPrice, HotWaterPrice,
       MunicipalSalesTax, BoroughSalesTax
FROM City
WHERE Active = 1 AND Latitude IS NOT NULL
ORDER BY ID`

	var rows []communityRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("sqlite repository: load communities: %w", err)
	}

	communities := make([]enrichment.Community, 0, len(rows))
	for _, row := range rows {
		communities = append(communities, enrichment.Community{
			ID:                   row.ID,
			Name:                 row.Name,
			Latitude:             nullFloat(row.Latitude),
			Longitude:            nullFloat(row.Longitude),
			ERHRegionID:          nullInt(row.ERHRegionID),
			WAPRegionID:          nullInt(row.WAPRegionID),
			ImprovementCostLevel: nullInt(row.ImprovementCostLevel),
			FuelRefer:            row.FuelRefer.Valid && row.FuelRefer.Int64 > 0,
			FuelCityID:           int(row.FuelCityID.Int64),
			FuelPrices: enrichment.FuelPrices{
				Oil1:     nullFloat(row.Oil1Price),
				Oil2:     nullFloat(row.Oil2Price),
				Propane:  nullFloat(row.PropanePrice),
				Birch:    nullFloat(row.BirchPrice),
				Spruce:   nullFloat(row.SprucePrice),
				Coal:     nullFloat(row.CoalPrice),
				Steam:    nullFloat(row.SteamPrice),
				HotWater: nullFloat(row.HotWaterPrice),
			},
			MunicipalSalesTax: nullFloat(row.MunicipalSalesTax),
			BoroughSalesTax:   nullFloat(row.BoroughSalesTax),
		})
	}
	return communities, nil
}

type utilityRow struct {
	ID                 int             `db:"ID"`
	Name               string          `db:"Name"`
	Type               sql.NullInt64   `db:"Type"`
	Active             sql.NullInt64   `db:"Active"`
	IsCommercial       sql.NullInt64   `db:"IsCommercial"`
	Block1             sql.NullFloat64 `db:"Block1"`
	Block2             sql.NullFloat64 `db:"Block2"`
	Block3             sql.NullFloat64 `db:"Block3"`
	Block4             sql.NullFloat64 `db:"Block4"`
	Block5             sql.NullFloat64 `db:"Block5"`
	Rate1              sql.NullFloat64 `db:"Rate1"`
	Rate2              sql.NullFloat64 `db:"Rate2"`
	Rate3              sql.NullFloat64 `db:"Rate3"`
	Rate4              sql.NullFloat64 `db:"Rate4"`
	Rate5              sql.NullFloat64 `db:"Rate5"`
	FuelSurcharge      sql.NullFloat64 `db:"FuelSurcharge"`
	PurchasedEnergyAdj sql.NullFloat64 `db:"PurchasedEnergyAdj"`
	ChargesRCC         sql.NullInt64   `db:"ChargesRCC"`
	PCE                sql.NullFloat64 `db:"PCE"`
}

// Utilities returns every utility rate structure. NameShort is derived
// here so the presentation ordering has a stable key.
func (r *Repository) Utilities(ctx context.Context) ([]*enrichment.Utility, error) {
	const query = `
SELECT ID, Name, Type, Active, IsCommercial,
       Block1, Block2, Block3, Block4, Block5,
       Rate1, Rate2, Rate3, Rate4, Rate5,
       FuelSurcharge, PurchasedEnergyAdj, ChargesRCC, PCE
FROM Utility
ORDER BY ID`

	var rows []utilityRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("sqlite repository: load utilities: %w", err)
	}

	utilities := make([]*enrichment.Utility, 0, len(rows))
	for _, row := range rows {
		u := &enrichment.Utility{
			ID:                 row.ID,
			Name:               row.Name,
			NameShort:          shortName(row.Name),
			Type:               int(row.Type.Int64),
			Active:             row.Active.Valid && row.Active.Int64 != 0,
			IsCommercial:       row.IsCommercial.Valid && row.IsCommercial.Int64 != 0,
			FuelSurcharge:      nullFloat(row.FuelSurcharge),
			PurchasedEnergyAdj: nullFloat(row.PurchasedEnergyAdj),
			ChargesRCC:         row.ChargesRCC.Valid && row.ChargesRCC.Int64 != 0,
			PCE:                nullFloat(row.PCE),
		}
		blocks := [5]sql.NullFloat64{row.Block1, row.Block2, row.Block3, row.Block4, row.Block5}
		rates := [5]sql.NullFloat64{row.Rate1, row.Rate2, row.Rate3, row.Rate4, row.Rate5}
		for i := range u.Blocks {
			u.Blocks[i] = enrichment.TariffBlock{
				Threshold: nullFloat(blocks[i]),
				Rate:      nullFloat(rates[i]),
			}
		}
		utilities = append(utilities, u)
	}
	return utilities, nil
}

// Links returns the community-to-utility association as a map from
// community ID to the linked utility IDs in link-table order.
func (r *Repository) Links(ctx context.Context) (map[int][]int, error) {
	const query = `SELECT CityId, UtilityId FROM CityUtilityLink`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite repository: load links: %w", err)
	}
	defer rows.Close()

	links := make(map[int][]int)
	for rows.Next() {
		var cityID, utilityID int
		if err := rows.Scan(&cityID, &utilityID); err != nil {
			return nil, fmt.Errorf("sqlite repository: scan link: %w", err)
		}
		links[cityID] = append(links[cityID], utilityID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite repository: iterate links: %w", err)
	}
	return links, nil
}

// MiscInfo returns the single miscellaneous-information row: the two
// regulatory surcharge rates plus the raw row for passthrough.
func (r *Repository) MiscInfo(ctx context.Context) (enrichment.MiscInfo, error) {
	row := r.db.QueryRowxContext(ctx, `SELECT * FROM MiscellaneousInformation LIMIT 1`)
	raw := map[string]any{}
	if err := row.MapScan(raw); err != nil {
		return enrichment.MiscInfo{}, fmt.Errorf("sqlite repository: load misc info: %w", err)
	}
	return enrichment.MiscInfo{
		RegulatorySurchargeElectric: rawFloat(raw, "RegulatorySurchargeElectric"),
		RegulatorySurchargeGas:      rawFloat(raw, "RegulatorySurcharge"),
		Raw:                         raw,
	}, nil
}

func shortName(name string) string {
	runes := []rune(name)
	if len(runes) > 6 {
		return string(runes[:6])
	}
	return name
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	value := v.Float64
	return &value
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	value := v.Int64
	return &value
}

func rawFloat(raw map[string]any, key string) *float64 {
	switch v := raw[key].(type) {
	case float64:
		return &v
	case int64:
		value := float64(v)
		return &value
	default:
		return nil
	}
}
