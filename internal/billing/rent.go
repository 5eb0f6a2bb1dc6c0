package billing

// Price computes the tenant's final owed amount for an aggregated charge:
// base rent plus the tenant's utility share, rounded half-up to cents.
// Resolving the tenant for a charge's house is the caller's job; a charge
// with no tenant profile is dropped there, not here.
func Price(tenant Tenant, charge *AggregatedCharge) ChargeResult {
	final := tenant.BaseRent.Add(tenant.UtilityShare.Mul(charge.Total)).Round(2)
	return ChargeResult{
		House:        charge.House,
		PeriodEnd:    charge.PeriodEnd,
		UtilityTotal: charge.Total.Round(2),
		FinalAmount:  final,
		Tenant:       tenant,
	}
}
