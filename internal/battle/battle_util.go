package battle

func ContainsEffect(effects []Effect, effectType EffectType) bool {
	for _, fx := range effects {
		if fx.Type == effectType {
			return true
		}
	}
	return false
}

func FindEffect(effects []Effect, effectType EffectType) (Effect, bool) {
	for _, fx := range effects {
		if fx.Type == effectType {
			return fx, true
		}
	}
	return Effect{}, false
}
