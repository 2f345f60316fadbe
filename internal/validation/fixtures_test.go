package validation

import "github.com/mmrzaf/datalchemy/internal/domain"

func col(pos int, name, udt string, nullable bool) domain.Column {
	return domain.Column{OrdinalPosition: pos, Name: name, IsNullable: nullable, ColumnType: domain.ColumnType{DataType: udt, UDTName: udt}}
}

func shopSchema() *domain.DatabaseSchema {
	return &domain.DatabaseSchema{
		SchemaVersion: "0.2",
		Engine:        "postgres",
		Schemas: []domain.Schema{{
			Name: "public",
			Tables: []domain.Table{
				{
					Name: "customers",
					Kind: domain.TableKindTable,
					Columns: []domain.Column{
						col(1, "id", "int4", false),
						col(2, "first_name", "text", false),
						col(3, "last_name", "text", false),
						col(4, "email", "varchar", false),
						col(5, "region", "text", true),
					},
					Constraints: []domain.Constraint{
						{Kind: domain.ConstraintPrimaryKey, Name: "customers_pkey", Columns: []string{"id"}},
						{Kind: domain.ConstraintUnique, Name: "customers_email_key", Columns: []string{"email"}},
					},
				},
				{
					Name: "orders",
					Kind: domain.TableKindTable,
					Columns: []domain.Column{
						col(1, "id", "int4", false),
						col(2, "customer_id", "int4", false),
						col(3, "total", "numeric", true),
					},
					Constraints: []domain.Constraint{
						{Kind: domain.ConstraintPrimaryKey, Columns: []string{"id"}},
						{
							Kind:              domain.ConstraintForeignKey,
							Name:              "orders_customer_id_fkey",
							Columns:           []string{"customer_id"},
							ReferencedSchema:  "public",
							ReferencedTable:   "customers",
							ReferencedColumns: []string{"id"},
						},
					},
				},
			},
		}},
	}
}

func basePlan() *domain.Plan {
	return &domain.Plan{
		PlanVersion: domain.PlanVersion,
		Seed:        42,
		SchemaRef:   domain.SchemaRef{SchemaVersion: "0.2", Engine: "postgres"},
		Targets:     []domain.Target{{Schema: "public", Table: "orders", Rows: 10}},
	}
}
