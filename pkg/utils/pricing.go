package utils

// DeliveryCostResult contains the calculated cost and breakdown
type DeliveryCostResult struct {
	TotalCost           float64 `json:"totalCost"`
	BaseCost            float64 `json:"baseCost"`
	ExtraWeightKg       float64 `json:"extraWeightKg"`
	ExtraWeightCharge   float64 `json:"extraWeightCharge"`
	CrossDistrictCharge float64 `json:"crossDistrictCharge"`
	SameDistrict        bool    `json:"sameDistrict"`
}

const (
	// Rates in BDT
	DocumentCostSameDistrict     = 60.0
	DocumentCostCrossDistrict    = 80.0
	NonDocumentBaseSameDistrict  = 110.0
	NonDocumentBaseCrossDistrict = 150.0
	BaseWeightLimitKg            = 3.0
	ExtraKgRate                  = 40.0
	CrossDistrictExtra           = 40.0
)

// CalculateDeliveryCost computes the delivery cost for a parcel.
//
// Documents have a flat rate regardless of weight. Non-documents pay the base
// rate up to 3kg; above that, every extra kg costs 40 and cross-district
// shipments pay an additional flat 40. The extra-kg charge is (weight-3)*40
// with the fractional weight kept as-is, no rounding.
func CalculateDeliveryCost(parcelType string, weight float64, sameDistrict bool) DeliveryCostResult {
	result := DeliveryCostResult{SameDistrict: sameDistrict}

	if parcelType == "document" {
		if sameDistrict {
			result.BaseCost = DocumentCostSameDistrict
		} else {
			result.BaseCost = DocumentCostCrossDistrict
		}
		result.TotalCost = result.BaseCost
		return result
	}

	if sameDistrict {
		result.BaseCost = NonDocumentBaseSameDistrict
	} else {
		result.BaseCost = NonDocumentBaseCrossDistrict
	}

	if weight > BaseWeightLimitKg {
		result.ExtraWeightKg = weight - BaseWeightLimitKg
		result.ExtraWeightCharge = result.ExtraWeightKg * ExtraKgRate
		if !sameDistrict {
			result.CrossDistrictCharge = CrossDistrictExtra
		}
	}

	result.TotalCost = result.BaseCost + result.ExtraWeightCharge + result.CrossDistrictCharge
	return result
}
