package service

import (
	"context"
	"fmt"
	"time"

	"github.com/poetrydeveloper/app-store-v2/internal/store/repository"
	"github.com/xuri/excelize/v2"
)

// ExportService 到货/单品导出为 xlsx
type ExportService struct {
	deliveryRepo *repository.DeliveryRepository
	unitRepo     *repository.UnitRepository
	now          func() time.Time
}

// NewExportService 创建导出服务
func NewExportService(repos *repository.Repositories) *ExportService {
	return &ExportService{
		deliveryRepo: repos.Delivery,
		unitRepo:     repos.Unit,
		now:          time.Now,
	}
}

var deliveryExportHeaders = []string{
	"ID", "Delivery date", "Product code", "Product", "Quantity", "Status",
	"Extra shipment", "Supplier", "Customer", "Price per unit", "Request date", "Units created", "Notes",
}

var unitExportHeaders = []string{
	"Serial number", "Product code", "Product", "Delivery ID", "Created at",
}

// ExportDeliveries 按列表筛选条件导出到货
func (s *ExportService) ExportDeliveries(ctx context.Context, filters map[string]string) (*excelize.File, string, error) {
	items, err := s.deliveryRepo.ListForExport(ctx, filters)
	if err != nil {
		return nil, "", fmt.Errorf("list deliveries: %w", err)
	}

	rows := make([][]interface{}, 0, len(items))
	for _, d := range items {
		code, name := "", ""
		if d.Product != nil {
			code, name = d.Product.Code, d.Product.Name
		}
		extra := "no"
		if d.ExtraShipment {
			extra = "yes"
		}
		rows = append(rows, []interface{}{
			d.ID,
			d.DeliveryDate.Format(dateLayout),
			code,
			name,
			d.Quantity,
			d.Status,
			extra,
			d.Supplier,
			d.Customer,
			d.PricePerUnit.InexactFloat64(),
			d.RequestDate.Format(dateLayout),
			d.UnitsCreated,
			d.Notes,
		})
	}

	f, err := writeSheet("Deliveries", deliveryExportHeaders, rows,
		[]float64{34, 14, 14, 30, 10, 10, 14, 20, 20, 14, 14, 14, 40})
	if err != nil {
		return nil, "", err
	}
	return f, fmt.Sprintf("deliveries_%s.xlsx", s.now().Format("20060102")), nil
}

// ExportUnits 按列表筛选条件导出单品
func (s *ExportService) ExportUnits(ctx context.Context, filters map[string]string) (*excelize.File, string, error) {
	units, err := s.unitRepo.ListForExport(ctx, filters)
	if err != nil {
		return nil, "", fmt.Errorf("list units: %w", err)
	}

	rows := make([][]interface{}, 0, len(units))
	for _, u := range units {
		code, name := "", ""
		if u.Product != nil {
			code, name = u.Product.Code, u.Product.Name
		}
		rows = append(rows, []interface{}{
			u.SerialNumber,
			code,
			name,
			u.DeliveryID,
			u.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	f, err := writeSheet("Units", unitExportHeaders, rows, []float64{44, 14, 30, 34, 20})
	if err != nil {
		return nil, "", err
	}
	return f, fmt.Sprintf("units_%s.xlsx", s.now().Format("20060102")), nil
}

func writeSheet(sheet string, headers []string, rows [][]interface{}, widths []float64) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}

	// 表头样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		f.Close()
		return nil, err
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	f.SetCellStyle(sheet, "A1", last+"1", headerStyle)

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}
	return f, nil
}
