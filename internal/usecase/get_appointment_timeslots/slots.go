package get_appointment_timeslots

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-CRM/internal/domain"
)

// calculateAvailability считает для каждого слота количество пересекающихся встреч того же типа
// Встречи, которые только граничат со слотом, не считаются
func (uc *UseCase) calculateAvailability(
	ctx context.Context,
	slots []domain.Timeslot,
	t *domain.AppointmentType,
	exclude string,
) ([]domain.TimeslotAvailability, error) {
	filter := domain.SlotFilter{AppointmentType: t.Name, Exclude: exclude}

	result := make([]domain.TimeslotAvailability, len(slots))
	for i, slot := range slots {
		booked, err := uc.appointmentRepo.CountInSlot(ctx, slot.Start, slot.End, filter)
		if err != nil {
			uc.logger.Error("GetAppointmentTimeslots: failed to count appointments in slot %s: %v",
				slot.Start.Format(domain.DateTimeFormat), err)
			return nil, fmt.Errorf("%w: failed to count appointments: %v", ErrInternal, err)
		}
		result[i] = domain.NewTimeslotAvailability(slot, t.NumberOfAgents, booked)
	}
	return result, nil
}
