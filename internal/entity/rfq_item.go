package entity

// RFQLineItem is one parsed line of a quotation document.
type RFQLineItem struct {
	Code          string `json:"code"`
	Label         string `json:"label"`
	Description   string `json:"description"`
	Quantity      string `json:"qty"`
	UnitOfMeasure string `json:"uom"`
	ItemCode      string `json:"item_code"`
}

// Row returns the cells in constants.RFQColumns order.
func (i RFQLineItem) Row() []string {
	return []string{i.Code, i.Label, i.Description, i.Quantity, i.UnitOfMeasure, i.ItemCode}
}
