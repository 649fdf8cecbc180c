package sieve

// ExpectedPrimes returns the first PrimeCount primes in ascending order, as
// the program stores them in the results array.
func ExpectedPrimes() []uint16 {
	primes := make([]uint16, 0, PrimeCount)
	for n := 2; len(primes) < PrimeCount; n++ {
		if isPrime(n) {
			primes = append(primes, uint16(n))
		}
	}
	return primes
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	for d := 2; d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}

func countPrimesBelow(limit int) int {
	count := 0
	for n := 2; n < limit; n++ {
		if isPrime(n) {
			count++
		}
	}
	return count
}
