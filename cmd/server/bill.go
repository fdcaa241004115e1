package main

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"depotChangeManagement/internal/billing"
	"depotChangeManagement/models"
	"depotChangeManagement/repository"
)

func newBillServiceFeeCmd() *cobra.Command {
	var number string
	cmd := &cobra.Command{
		Use:   "bill-service-fee",
		Short: "Bill the platform service fee for a container's approved COD request",
		RunE: func(cmd *cobra.Command, args []string) error {
			if number == "" {
				return errors.New("--container is required")
			}
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()

			c, err := repository.NewContainerRepository(a.db).GetByNumber(ctx, number)
			if err != nil {
				return err
			}
			if c == nil {
				return errors.Errorf("container %q not found", number)
			}
			req, err := repository.NewCodRequestRepository(a.db).FindLatestApprovedByContainer(ctx, c.ID)
			if err != nil {
				return err
			}
			if req == nil {
				return errors.Errorf("container %q has no approved cod request", number)
			}

			bills := repository.NewBillingRepository(a.db)
			existing, err := bills.ListByRequest(ctx, req.ID)
			if err != nil {
				return err
			}
			for _, b := range existing {
				if b.Kind == models.BillingServiceFee {
					return errors.Errorf("service fee already billed for request %s", req.ID)
				}
			}

			e := billing.NewEmitter(bills, a.cfg.Billing.ServiceFee, a.log)
			if err := e.EmitServiceFee(ctx, req.RequestingOrgID, req.ID, c.ContainerNumber); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "billed service fee for request %s\n", req.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&number, "container", "", "container number")
	return cmd
}
