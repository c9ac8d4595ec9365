package models

// CategoryUncategorized is assigned when no rule matches a description.
const CategoryUncategorized = "Uncategorized"

// HeaderToken marks the header row of a statement export.
const HeaderToken = "Transaction Date"

// Expense sign conventions of source files.
const (
	ExpenseSignNegative = "negative"
	ExpenseSignPositive = "positive"
)

// PermissionDirectory is the mode of directories created for output.
const PermissionDirectory = 0750
