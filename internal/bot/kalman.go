package bot

// kalman.go - рекурсивная оценка коэффициента хеджирования
//
// Модель наблюдения: y ≈ slope·x + intercept + noise, где intercept -
// коэффициент при константном регрессоре 1. Оба коэффициента медленно
// дрейфуют во времени; фильтр Калмана отслеживает дрейф одним шагом
// predict+update на каждую пару цен.
//
// Состояние принадлежит ровно одной стратегии пары и сбрасывается
// только при (пере)создании стратегии.

// KalmanFilter - фильтр для пары ценовых рядов
type KalmanFilter struct {
	delta float64 // коэффициент шума процесса
	ve    float64 // дисперсия шума наблюдения
	vw    float64 // delta/(1-delta), диагональ ковариации шума процесса

	slope     float64
	intercept float64

	// Ковариация оценки коэффициентов, 2x2
	p [2][2]float64
}

// NewKalmanFilter создаёт фильтр с нулевым начальным состоянием.
//
// beta = [0, 0], P = 0: первые обновления целиком определяются
// данными, что делает траекторию воспроизводимой бит-в-бит.
func NewKalmanFilter(delta, ve float64) *KalmanFilter {
	return &KalmanFilter{
		delta: delta,
		ve:    ve,
		vw:    delta / (1 - delta),
	}
}

// Update выполняет один шаг фильтра для пары наблюдений (x, y).
//
// Возвращает:
//   - hedgeRatio = 1/slope (не определён при slope == 0 - вызывающий
//     обязан проверить перед использованием)
//   - innovation e = y - ŷ (невязка наблюдения)
//   - innovationVariance Q (дисперсия невязки)
func (kf *KalmanFilter) Update(x, y float64) (hedgeRatio, innovation, innovationVariance float64) {
	// Предсказанная ковариация: R = P + Vw·I
	r00 := kf.p[0][0] + kf.vw
	r01 := kf.p[0][1]
	r10 := kf.p[1][0]
	r11 := kf.p[1][1] + kf.vw

	// Предсказанное наблюдение
	yhat := kf.slope*x + kf.intercept

	// Дисперсия невязки: Q = [x,1]·R·[x,1]ᵀ + Ve
	q := x*x*r00 + x*(r01+r10) + r11 + kf.ve

	// Невязка
	e := y - yhat

	// Усиление: K = R·[x,1]ᵀ / Q
	k0 := (r00*x + r01) / q
	k1 := (r10*x + r11) / q

	// Обновление коэффициентов
	kf.slope += k0 * e
	kf.intercept += k1 * e

	// Обновление ковариации: P = (1 - K·[x,1])·R,
	// где K·[x,1] = k0·x + k1 - скалярное произведение
	shrink := 1 - (k0*x + k1)
	kf.p[0][0] = shrink * r00
	kf.p[0][1] = shrink * r01
	kf.p[1][0] = shrink * r10
	kf.p[1][1] = shrink * r11

	return 1 / kf.slope, e, q
}

// Slope возвращает текущую оценку наклона
func (kf *KalmanFilter) Slope() float64 {
	return kf.slope
}

// Intercept возвращает текущую оценку свободного члена
func (kf *KalmanFilter) Intercept() float64 {
	return kf.intercept
}
