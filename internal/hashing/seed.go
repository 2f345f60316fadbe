package hashing

const (
	fnvOffsetBasis uint64 = 0xcbf29ce484222325
	fnvPrime       uint64 = 0x100000001b3
	goldenGamma    uint64 = 0x9e3779b97f4a7c15
)

// TableSeed derives a per-table seed with 64-bit FNV-1a whose offset basis is
// xored with the plan seed. The key is "schema.table".
func TableSeed(planSeed uint64, key string) uint64 {
	hash := fnvOffsetBasis ^ planSeed
	for i := 0; i < len(key); i++ {
		hash ^= uint64(key[i])
		hash *= fnvPrime
	}
	return hash
}

// RowSeed mixes the row index and attempt number into the table seed.
// All arithmetic wraps.
func RowSeed(tableSeed uint64, rowIndex uint64, attempt uint64) uint64 {
	mixed := tableSeed ^ (rowIndex * goldenGamma)
	mixed ^= attempt
	return mixed * fnvPrime
}
