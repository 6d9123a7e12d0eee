package domain

// Reference catalogs of cost items. These are immutable seed data supplied
// to a calculation, not engine state; callers get fresh copies.

// CapexGroupHeaders is the fixed reporting order of CAPEX groups.
var CapexGroupHeaders = []string{
	"First Time Inventory",
	"First Time Capex",
	"Replacement Inventory",
	"Replacement Capex",
	"Capex People",
	"ROW Deposit",
	"Deposit Refund",
}

var defaultOpexItems = []OpexItem{
	{Name: "Rent", Group: "Opex", Type: "opex"},
	{Name: "Electricity", Group: "Opex", Type: "opex"},
	{Name: "People Cost", Group: "Opex", Type: "people"},
	{Name: "Network O&M", Group: "Opex", Type: "opex"},
	{Name: "Warehouse Rental", Group: "Opex", Type: "opex"},
	{Name: "Operational Others", Group: "Opex", Type: "opex"},
	{Name: "Travelling & Sales Promotions", Group: "Opex", Type: "opex"},
	{Name: "Freight Internal & other direct", Group: "Opex", Type: "opex"},
	{Name: "Insurance", Group: "Opex", Type: "opex"},
	{Name: "Passthrough Expense", Group: "Opex", Type: "opex", Passthrough: true},
	{Name: "Loss on Sale of Scrap", Group: "Opex", Type: "opex"},
	{Name: "Software & IT", Group: "Opex", Type: "opex"},
}

var defaultCapexItems = []CapexItem{
	{Name: "Battery, SMPS & Cabinet - First Time", Group: "First Time Inventory", Type: "first_time"},
	{Name: "Pole - First Time", Group: "First Time Inventory", Type: "first_time"},
	{Name: "Fiber - First Time", Group: "First Time Inventory", Type: "first_time"},
	{Name: "Antenna - First Time", Group: "First Time Inventory", Type: "first_time"},
	{Name: "Others - First Time", Group: "First Time Inventory", Type: "first_time"},
	{Name: "Acquisition - First Time", Group: "First Time Capex", Type: "first_time"},
	{Name: "IBD - First Time", Group: "First Time Capex", Type: "first_time"},
	{Name: "MC & EB Permission - First Time", Group: "First Time Capex", Type: "first_time"},
	{Name: "Other Services - First Time", Group: "First Time Capex", Type: "first_time"},
	{Name: "Capex People", Group: "Capex People", Type: "people"},
	{Name: "Battery, SMPS & Cabinet - Replacement", Group: "Replacement Inventory", Type: "replacement"},
	{Name: "Pole - Replacement", Group: "Replacement Inventory", Type: "replacement"},
	{Name: "Fiber - Replacement", Group: "Replacement Inventory", Type: "replacement"},
	{Name: "Antenna - Replacement", Group: "Replacement Inventory", Type: "replacement"},
	{Name: "Others - Replacement", Group: "Replacement Inventory", Type: "replacement"},
	{Name: "Acquisition - Replacement", Group: "Replacement Capex", Type: "replacement"},
	{Name: "IBD - Replacement", Group: "Replacement Capex", Type: "replacement"},
	{Name: "MC & EB Permission - Replacement", Group: "Replacement Capex", Type: "replacement"},
	{Name: "Other Services - Replacement", Group: "Replacement Capex", Type: "replacement"},
	{Name: "ROW Deposit", Group: "ROW Deposit", Type: "deposit"},
	{Name: "Deposit Refund", Group: "Deposit Refund", Type: "deposit_refund", IsRefund: true},
}

// DefaultOpexItems returns a copy of the reference OPEX catalog.
func DefaultOpexItems() []OpexItem {
	items := make([]OpexItem, len(defaultOpexItems))
	copy(items, defaultOpexItems)
	return items
}

// DefaultCapexItems returns a copy of the reference CAPEX catalog.
func DefaultCapexItems() []CapexItem {
	items := make([]CapexItem, len(defaultCapexItems))
	copy(items, defaultCapexItems)
	return items
}
